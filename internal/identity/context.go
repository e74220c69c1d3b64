package identity

import "context"

type ctxKey string

const userIDKey ctxKey = "auramark.userID"

// WithUser stores the authenticated user id in ctx.
func WithUser(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// UserFrom returns the authenticated user id of ctx, if any.
func UserFrom(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}
