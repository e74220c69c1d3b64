package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for any token that fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSubject is returned for a valid token that names no user.
	ErrMissingSubject = errors.New("token has no user id")
)

// Claims are the JWT claims auramark reads. UserID falls back to the
// registered subject when the uid claim is absent.
type Claims struct {
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// User returns the user id carried by the claims.
func (c *Claims) User() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Verifier checks HMAC-signed bearer tokens.
type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewVerifier builds a verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		leeway: 30 * time.Second,
	}
}

// Verify parses tokenString and returns the user id it authenticates.
func (v *Verifier) Verify(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	opts := []jwt.ParserOption{jwt.WithLeeway(v.leeway), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	uid := claims.User()
	if uid == "" {
		return "", ErrMissingSubject
	}
	return uid, nil
}

// Issue signs a token for uid valid for ttl.
func (v *Verifier) Issue(uid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
