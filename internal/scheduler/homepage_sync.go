package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	"github.com/MrSnakeDoc/auramark/internal/service"
	"github.com/MrSnakeDoc/auramark/internal/sources/homepage"
)

// Importer commits an import batch for the context user.
type Importer interface {
	Import(ctx context.Context, b *domain.Batch) (service.Result, error)
}

// HomepageSync periodically imports a Homepage config file into one
// user's collections.
type HomepageSync struct {
	loader        *homepage.Loader
	mapper        *homepage.Mapper
	importer      Importer
	userID        string
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewHomepageSync creates a sync job for file, imported as userID.
func NewHomepageSync(
	file string,
	kind homepage.Kind,
	userID string,
	importer Importer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *HomepageSync {
	return &HomepageSync{
		loader:        homepage.NewLoader(file, kind),
		mapper:        homepage.NewMapper(),
		importer:      importer,
		userID:        userID,
		logger:        logger.With(log, logger.String("file", file), logger.String("user", userID)),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic sync process
func (hs *HomepageSync) Start(ctx context.Context) error {
	// Load immediately on start
	if _, err := hs.Sync(ctx); err != nil {
		return fmt.Errorf("initial homepage sync failed: %w", err)
	}

	ticker := time.NewTicker(hs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := hs.Sync(ctx); err != nil {
					hs.logger.Error("failed to sync homepage",
						logger.Error(err))
				}
			case <-hs.manualTrigger:
				hs.logger.Info("manual homepage sync triggered")
				if _, err := hs.Sync(ctx); err != nil {
					hs.logger.Error("failed to sync homepage",
						logger.Error(err))
				}
			case <-hs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sync job
func (hs *HomepageSync) Stop() {
	close(hs.stopCh)
}

// Sync reads, maps and imports the config file once.
func (hs *HomepageSync) Sync(ctx context.Context) (service.Result, error) {
	hs.logger.Info("syncing homepage config")

	data, err := hs.loader.Read()
	if err != nil {
		return service.Result{}, err
	}

	batch, err := hs.mapper.Map(hs.loader.Kind(), data)
	if err != nil {
		return service.Result{}, fmt.Errorf("failed to map %s: %w", hs.loader.Kind(), err)
	}

	res, err := hs.importer.Import(identity.WithUser(ctx, hs.userID), batch)
	if err != nil {
		return service.Result{}, fmt.Errorf("failed to import homepage config: %w", err)
	}

	hs.logger.Info("homepage config imported",
		logger.Int("writes", batch.Len()),
		logger.Int64("revision", res.Revision))
	return res, nil
}
