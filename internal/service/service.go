// Package service implements every state-changing bookmark operation as a
// single atomic batch against the remote store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
)

// maxPlanAttempts bounds how often a fenced mutation is re-planned after
// another commit moved the store revision.
const maxPlanAttempts = 3

// Store applies batches atomically and reads consistent snapshots.
type Store interface {
	Commit(ctx context.Context, uid string, b *domain.Batch) (domain.CommitResult, error)
	LoadSnapshot(ctx context.Context, uid string) (*domain.Snapshot, error)
}

// State gives access to a user's current data and learns about structural
// changes that affect per-user view state.
type State interface {
	// Current returns the freshest known snapshot of uid.
	Current(ctx context.Context, uid string) (*domain.Snapshot, error)
	// FolderDeleted is called after a folder was removed.
	FolderDeleted(uid, folderID string)
}

// Result reports the documents a mutation touched and the store revision
// it produced.
type Result struct {
	IDs      []string `json:"ids"`
	Revision int64    `json:"revision"`
}

// Service is the mutation protocol.
type Service struct {
	store  Store
	state  State
	logger logger.Logger
	now    func() time.Time
}

// New creates a Service.
func New(store Store, state State, log logger.Logger) *Service {
	return &Service{
		store:  store,
		state:  state,
		logger: log,
		now:    time.Now,
	}
}

// user returns the authenticated user of ctx or ErrPermission.
func user(ctx context.Context) (string, error) {
	uid, ok := identity.UserFrom(ctx)
	if !ok {
		return "", domain.ErrPermission
	}
	return uid, nil
}

// current returns the caller's uid and session snapshot. The snapshot may
// trail the store; use fenced when a decision depends on other documents.
func (s *Service) current(ctx context.Context) (string, *domain.Snapshot, error) {
	uid, err := user(ctx)
	if err != nil {
		return "", nil, err
	}
	snap, err := s.state.Current(ctx, uid)
	if err != nil {
		return "", nil, err
	}
	return uid, snap, nil
}

// planFunc builds a batch from snap. A nil batch means nothing to write.
type planFunc func(snap *domain.Snapshot) (b *domain.Batch, ids []string, err error)

// fenced plans against a snapshot read straight from the store and commits
// only while the store is still at that snapshot's revision, re-planning
// when another commit got in between.
func (s *Service) fenced(ctx context.Context, op string, plan planFunc) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}

	for attempt := 1; ; attempt++ {
		snap, err := s.store.LoadSnapshot(ctx, uid)
		if err != nil {
			return Result{}, err
		}
		b, ids, err := plan(snap)
		if err != nil {
			return Result{}, err
		}
		if b == nil {
			return Result{IDs: []string{}, Revision: snap.Revision}, nil
		}
		b.FenceRevision(snap.Revision)

		res, err := s.commit(ctx, op, uid, b, ids)
		if !errors.Is(err, domain.ErrStaleRevision) {
			return res, err
		}
		if attempt == maxPlanAttempts {
			return Result{}, domain.Transport(op, err)
		}
	}
}

func (s *Service) commit(ctx context.Context, op, uid string, b *domain.Batch, ids []string) (Result, error) {
	res, err := s.store.Commit(ctx, uid, b)
	if errors.Is(err, domain.ErrStaleRevision) {
		s.logger.Debug("store moved since planning",
			logger.String("op", op),
			logger.String("user", uid),
			logger.Error(err))
		return Result{}, err
	}
	if err != nil {
		s.logger.Warn("mutation failed",
			logger.String("op", op),
			logger.String("user", uid),
			logger.String("kind", domain.ErrorKind(err)),
			logger.Error(err))
		return Result{}, err
	}
	ids = uniqueIDs(append(ids, res.CreatedIDs...))
	s.logger.Debug("mutation committed",
		logger.String("op", op),
		logger.String("user", uid),
		logger.Int("writes", b.Len()),
		logger.Int64("revision", res.Revision))
	return Result{IDs: ids, Revision: res.Revision}, nil
}

func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// uniqueIDs trims ids, drops empty ones and removes duplicates.
func uniqueIDs(ids []string) []string {
	return domain.NormalizeTags(ids)
}
