package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	"github.com/MrSnakeDoc/auramark/internal/service"
)

const (
	// DefaultSweepInterval is used when no sweep interval is configured.
	DefaultSweepInterval = time.Hour
)

// UserLister returns every user with stored data.
type UserLister interface {
	Users(ctx context.Context) ([]string, error)
}

// Purger deletes the trashed bookmarks of the context user older than cutoff.
type Purger interface {
	PurgeTrash(ctx context.Context, cutoff time.Time) (service.Result, error)
}

// TrashPurger permanently deletes bookmarks that stayed in the trash
// longer than the retention period.
type TrashPurger struct {
	users     UserLister
	purger    Purger
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewTrashPurger creates a purger. A zero retention disables it.
func NewTrashPurger(
	users UserLister,
	purger Purger,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
) *TrashPurger {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &TrashPurger{
		users:     users,
		purger:    purger,
		logger:    log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Enabled reports whether a retention period is configured.
func (tp *TrashPurger) Enabled() bool {
	return tp.retention > 0
}

// Start runs a sweep, then keeps sweeping every interval until ctx ends or
// Stop is called. It does nothing when the purger is disabled.
func (tp *TrashPurger) Start(ctx context.Context) error {
	if !tp.Enabled() {
		tp.logger.Info("trash purge disabled")
		return nil
	}

	// Run immediately on start
	if _, err := tp.Sweep(ctx); err != nil {
		tp.logger.Warn("initial trash purge failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(tp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := tp.Sweep(ctx); err != nil {
					tp.logger.Error("trash purge failed",
						logger.Error(err))
				}
			case <-tp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the purger
func (tp *TrashPurger) Stop() {
	close(tp.stopCh)
}

// Sweep purges expired trash of every user and returns the number of
// deleted bookmarks. A failing user is logged and skipped.
func (tp *TrashPurger) Sweep(ctx context.Context) (int, error) {
	users, err := tp.users.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	cutoff := tp.now().Add(-tp.retention)
	deleted := 0
	for _, uid := range users {
		res, err := tp.purger.PurgeTrash(identity.WithUser(ctx, uid), cutoff)
		if err != nil {
			tp.logger.Warn("failed to purge trash",
				logger.String("user", uid),
				logger.Error(err))
			continue
		}
		if n := len(res.IDs); n > 0 {
			tp.logger.Info("purged expired trash",
				logger.String("user", uid),
				logger.Int("deleted", n))
			deleted += n
		}
	}

	if deleted == 0 {
		tp.logger.Debug("no trash to purge")
	}
	return deleted, nil
}
