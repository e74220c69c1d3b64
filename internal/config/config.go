package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "AURAMARK_"

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, streams excluded

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Identity
	JWTSecret string // HS256 signing secret
	JWTIssuer string // optional, checked against the iss claim

	// Sessions
	SessionOpenTimeout time.Duration // max wait for the first snapshot on login

	// Metadata fetcher
	MetadataTimeout    time.Duration // ex: 5s
	MetadataUserAgent  string        // crawler user agent sent upstream
	MetadataCacheTTL   time.Duration // 0 = no caching
	MetadataRateBurst  int           // per client IP
	MetadataRatePerMin int           // per client IP

	// Trash retention
	TrashRetention     time.Duration // 0 = trashed bookmarks are kept forever
	TrashSweepInterval time.Duration

	// Homepage file sync (optional, empty file or user = disabled)
	HomepageFile         string
	HomepageKind         string // "bookmarks" | "services"
	HomepageUser         string
	HomepageSyncInterval time.Duration

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	AllowedOrigins []string // optional, CORS origins allowed to call the API ("*" = any)
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, is loaded first without overriding
// variables that are already set. Missing required values panic.
func Load() *Config {
	loadDotEnv(".env")

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("AURAMARK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("AURAMARK_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("AURAMARK_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("AURAMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("AURAMARK_PRETTY_LOG", true),

		// Identity
		JWTSecret: requireEnv("AURAMARK_JWT_SECRET"),
		JWTIssuer: getenv("AURAMARK_JWT_ISSUER", ""),

		SessionOpenTimeout: mustDuration("AURAMARK_SESSION_OPEN_TIMEOUT", 10*time.Second),

		// Metadata
		MetadataTimeout:    mustDuration("AURAMARK_METADATA_TIMEOUT", 5*time.Second),
		MetadataUserAgent:  getenv("AURAMARK_METADATA_USER_AGENT", ""),
		MetadataCacheTTL:   mustDuration("AURAMARK_METADATA_CACHE_TTL", 24*time.Hour),
		MetadataRateBurst:  getenvInt("AURAMARK_METADATA_RATE_BURST", 10),
		MetadataRatePerMin: getenvInt("AURAMARK_METADATA_RATE_PER_MIN", 30),

		// Trash
		TrashRetention:     mustDuration("AURAMARK_TRASH_RETENTION", 0),
		TrashSweepInterval: mustDuration("AURAMARK_TRASH_SWEEP_INTERVAL", time.Hour),

		// Homepage sync
		HomepageFile:         getenv("AURAMARK_HOMEPAGE_FILE", ""),
		HomepageKind:         getenv("AURAMARK_HOMEPAGE_KIND", "bookmarks"),
		HomepageUser:         getenv("AURAMARK_HOMEPAGE_USER", ""),
		HomepageSyncInterval: mustDuration("AURAMARK_HOMEPAGE_SYNC_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisAddr:             requireEnv("AURAMARK_REDIS_ADDR"),
		RedisUser:             getenv("AURAMARK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("AURAMARK_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("AURAMARK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("AURAMARK_REDIS_DB", 0),
		RedisDT:               mustDuration("AURAMARK_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("AURAMARK_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("AURAMARK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("AURAMARK_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("AURAMARK_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("AURAMARK_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("AURAMARK_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("AURAMARK_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("AURAMARK_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("AURAMARK_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   splitAndTrim(getenv("AURAMARK_ALLOWED_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("AURAMARK_ALLOWED_ORIGINS", "")),
		TrustProxy:     mustBool("AURAMARK_TRUST_PROXY", false),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Validate checks values that depend on each other.
func (c *Config) Validate() error {
	if c.RedisPasswordRequired && c.RedisPassword == "" {
		return fmt.Errorf("%sREDIS_PASSWORD is required when %sREDIS_PASSWORD_REQUIRED=true", envPrefix, envPrefix)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("%sJWT_SECRET must be at least 16 bytes", envPrefix)
	}
	if c.MetadataTimeout <= 0 {
		return fmt.Errorf("%sMETADATA_TIMEOUT must be > 0", envPrefix)
	}
	if c.TrashRetention < 0 {
		return fmt.Errorf("%sTRASH_RETENTION must be >= 0", envPrefix)
	}
	if c.HomepageSyncEnabled() && c.HomepageSyncInterval <= 0 {
		return fmt.Errorf("%sHOMEPAGE_SYNC_INTERVAL must be > 0", envPrefix)
	}
	return nil
}

// HomepageSyncEnabled reports whether a Homepage file should be synced.
func (c *Config) HomepageSyncEnabled() bool {
	return c.HomepageFile != "" && c.HomepageUser != ""
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	cp := *c
	cp.RedisPassword = "***REDACTED***"
	cp.JWTSecret = "***REDACTED***"
	if c.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// loadDotEnv loads path when it exists. Real environment variables win.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load %s: %v", path, err)
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
