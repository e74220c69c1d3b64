package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	"github.com/MrSnakeDoc/auramark/internal/metadata"
	"github.com/MrSnakeDoc/auramark/internal/service"
	"github.com/MrSnakeDoc/auramark/internal/session"
	redisstore "github.com/MrSnakeDoc/auramark/internal/store/redis"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the server
	AllowedCIDRS   []string         // IPs allowed to access ops endpoints
	AllowedOrigins []string         // CORS origins allowed to call the API
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RequestTimeout time.Duration    // per-request timeout, the event stream excluded

	RedisClient *redis.Client      // Redis client connection
	Store       *redisstore.Store  // remote document store
	Sessions    *session.Manager   // logged-in users and their change feeds
	Service     *service.Service   // mutation operations
	Verifier    *identity.Verifier // bearer token verification
	Fetcher     *metadata.Fetcher  // page title/thumbnail scraper

	MetadataCacheTTL   time.Duration // 0 disables the metadata cache
	MetadataRateBurst  int           // per client IP
	MetadataRatePerMin int           // per client IP

	HomepageSyncTrigger chan struct{} // Channel to trigger a homepage file sync (nil if disabled)
}

// Now returns the current time from TimeNow, falling back to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
