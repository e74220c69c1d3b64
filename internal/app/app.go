package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/auramark/internal/config"
	"github.com/MrSnakeDoc/auramark/internal/httpserver"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	"github.com/MrSnakeDoc/auramark/internal/metadata"
	"github.com/MrSnakeDoc/auramark/internal/redis"
	"github.com/MrSnakeDoc/auramark/internal/scheduler"
	"github.com/MrSnakeDoc/auramark/internal/service"
	"github.com/MrSnakeDoc/auramark/internal/session"
	"github.com/MrSnakeDoc/auramark/internal/sources/homepage"
	redisstore "github.com/MrSnakeDoc/auramark/internal/store/redis"
	"github.com/MrSnakeDoc/auramark/internal/version"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	redisClient  *goredis.Client
	sessions     *session.Manager
	stopSessions context.CancelFunc
	purger       *scheduler.TrashPurger
	homepage     *scheduler.HomepageSync
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	// Sessions outlive individual requests; they stop with the app.
	sessionCtx, stopSessions := context.WithCancel(context.Background())
	sessions := session.NewManager(sessionCtx, store, loggerClient)
	sessions.SetOpenTimeout(cfg.SessionOpenTimeout)

	svc := service.New(store, sessions, loggerClient)

	purger := scheduler.NewTrashPurger(
		store,
		svc,
		loggerClient,
		cfg.TrashSweepInterval,
		cfg.TrashRetention,
	)

	var homepageSync *scheduler.HomepageSync
	var syncTrigger chan struct{}
	if cfg.HomepageSyncEnabled() {
		kind, err := homepage.ParseKind(cfg.HomepageKind)
		if err != nil {
			loggerClient.Errorf("Invalid homepage kind: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("homepage file configured, initializing homepage sync",
			logger.String("file", cfg.HomepageFile),
			logger.String("kind", string(kind)),
			logger.String("user", cfg.HomepageUser))
		syncTrigger = make(chan struct{}, 1)
		homepageSync = scheduler.NewHomepageSync(
			cfg.HomepageFile,
			kind,
			cfg.HomepageUser,
			svc,
			loggerClient,
			cfg.HomepageSyncInterval,
			syncTrigger,
		)
	} else {
		loggerClient.Info("homepage file not configured, homepage sync disabled")
	}

	d := deps.Deps{
		Logger:              loggerClient,
		StartTime:           time.Now(),
		Version:             version.Version,
		Commit:              version.Commit,
		BuildDate:           version.BuildDate,
		GoVersion:           version.GoVersion,
		TimeNow:             time.Now,
		AllowedHosts:        cfg.AllowedHosts,
		AllowedCIDRS:        cfg.AllowedCIDRS,
		AllowedOrigins:      cfg.AllowedOrigins,
		TrustProxy:          cfg.TrustProxy,
		RequestTimeout:      cfg.RequestTimeout,
		RedisClient:         redisClient,
		Store:               store,
		Sessions:            sessions,
		Service:             svc,
		Verifier:            identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Fetcher:             metadata.New(metadata.Options{Timeout: cfg.MetadataTimeout, UserAgent: cfg.MetadataUserAgent}),
		MetadataCacheTTL:    cfg.MetadataCacheTTL,
		MetadataRateBurst:   cfg.MetadataRateBurst,
		MetadataRatePerMin:  cfg.MetadataRatePerMin,
		HomepageSyncTrigger: syncTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		redisClient:  redisClient,
		sessions:     sessions,
		stopSessions: stopSessions,
		purger:       purger,
		homepage:     homepageSync,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Auramark v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Auramark %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.homepage != nil {
		if err := a.homepage.Start(ctx); err != nil {
			return fmt.Errorf("failed to start homepage sync: %w", err)
		}
		a.logger.Info("homepage sync started",
			logger.Duration("interval", a.cfg.HomepageSyncInterval))
	}

	if err := a.purger.Start(ctx); err != nil {
		return fmt.Errorf("failed to start trash purger: %w", err)
	}
	if a.purger.Enabled() {
		a.logger.Info("trash purger started",
			logger.Duration("retention", a.cfg.TrashRetention),
			logger.Duration("interval", a.cfg.TrashSweepInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.homepage != nil {
		a.homepage.Stop()
	}
	a.purger.Stop()

	// Closing sessions ends open snapshot streams so Shutdown does not wait on them.
	a.sessions.Shutdown()
	a.stopSessions()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Auramark stopped cleanly")
	return nil
}
