// Package session ties a user's login lifetime to a change feed subscription
// and the in-memory store it keeps current.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	redisstore "github.com/MrSnakeDoc/auramark/internal/store/redis"
)

// DefaultOpenTimeout bounds how long login waits for the first snapshot.
const DefaultOpenTimeout = 10 * time.Second

// Feed is the remote store capability sessions need.
type Feed interface {
	Subscribe(ctx context.Context, uid string) <-chan redisstore.FeedEvent
	LoadSnapshot(ctx context.Context, uid string) (*domain.Snapshot, error)
}

// Manager owns the live sessions, one per user.
type Manager struct {
	feed        Feed
	logger      logger.Logger
	base        context.Context
	openTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager. Feeds run until base is cancelled or the
// user logs out.
func NewManager(base context.Context, feed Feed, log logger.Logger) *Manager {
	return &Manager{
		feed:        feed,
		logger:      log,
		base:        base,
		openTimeout: DefaultOpenTimeout,
		sessions:    make(map[string]*Session),
	}
}

// SetOpenTimeout changes how long Open waits for the first snapshot.
func (m *Manager) SetOpenTimeout(d time.Duration) {
	if d > 0 {
		m.openTimeout = d
	}
}

// Open logs uid in: it subscribes to the user's change feed and waits for
// the first snapshot. An existing live session is reused; one whose feed
// ended is resubscribed.
func (m *Manager) Open(ctx context.Context, uid string) (*Session, error) {
	if uid == "" {
		return nil, domain.ErrPermission
	}

	wait, stop := context.WithTimeout(ctx, m.openTimeout)
	defer stop()

	m.mu.Lock()
	s, ok := m.sessions[uid]
	if ok && s.Live() {
		m.mu.Unlock()
		return m.await(wait, s)
	}
	next := newSession(uid)
	if ok {
		next.SetView(s.View())
	}
	feedCtx, cancel := context.WithCancel(m.base)
	next.cancel = cancel
	m.sessions[uid] = next
	m.mu.Unlock()

	go m.run(feedCtx, next)

	s, err := m.await(wait, next)
	if err != nil {
		m.drop(next)
		return nil, err
	}
	m.logger.Info("session opened", logger.String("user", uid))
	return s, nil
}

// await blocks until s holds its first snapshot.
func (m *Manager) await(ctx context.Context, s *Session) (*Session, error) {
	select {
	case <-s.ready:
		return s, nil
	case <-s.done:
		if err := s.Err(); err != nil {
			return nil, err
		}
		return nil, domain.Transport("open session", errors.New("change feed closed before the first snapshot"))
	case <-ctx.Done():
		return nil, domain.Transport("open session", fmt.Errorf("no snapshot within %s: %w", m.openTimeout, ctx.Err()))
	}
}

// run consumes the feed of s until it ends.
func (m *Manager) run(ctx context.Context, s *Session) {
	defer func() {
		close(s.done)
		s.closeWatchers()
	}()

	first := true
	for ev := range m.feed.Subscribe(ctx, s.uid) {
		if ev.Err != nil {
			s.mu.Lock()
			s.err = ev.Err
			s.mu.Unlock()
			m.logger.Warn("change feed ended",
				logger.String("user", s.uid),
				logger.Error(ev.Err))
			return
		}

		s.index.Replace(ev.Snapshot)
		s.publish(ev.Snapshot)
		m.logger.Debug("snapshot applied",
			logger.String("user", s.uid),
			logger.Int64("revision", ev.Snapshot.Revision),
			logger.Int("bookmarks", len(ev.Snapshot.Bookmarks)),
			logger.Int("folders", len(ev.Snapshot.Folders)))

		if first {
			first = false
			close(s.ready)
		}
	}
}

// drop cancels s and forgets it if it is still the registered session.
func (m *Manager) drop(s *Session) {
	s.cancel()
	<-s.done
	s.index.Reset()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[s.uid] == s {
		delete(m.sessions, s.uid)
	}
}

// Close logs uid out: the feed is cancelled and the store emptied.
func (m *Manager) Close(uid string) bool {
	m.mu.Lock()
	s, ok := m.sessions[uid]
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.drop(s)
	m.logger.Info("session closed", logger.String("user", uid))
	return true
}

// Get returns the session of uid.
func (m *Manager) Get(uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	return s, ok
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	for _, s := range all {
		m.drop(s)
	}
}

// Current returns the session's snapshot when its feed is live and synced,
// otherwise it reads one straight from the remote store.
func (m *Manager) Current(ctx context.Context, uid string) (*domain.Snapshot, error) {
	if s, ok := m.Get(uid); ok && s.Live() && s.Ready() {
		return s.Snapshot(), nil
	}
	return m.feed.LoadSnapshot(ctx, uid)
}

// FolderDeleted resets the active view of uid when it showed folderID.
func (m *Manager) FolderDeleted(uid, folderID string) {
	s, ok := m.Get(uid)
	if !ok {
		return
	}
	if s.folderDeleted(folderID) {
		m.logger.Debug("active folder deleted, view reset",
			logger.String("user", uid),
			logger.String("folder", folderID))
	}
}
