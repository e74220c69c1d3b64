package session

import (
	"sync"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/index"
)

// View is the caller's active location and recent window.
type View struct {
	Location domain.Location     `json:"location"`
	Window   domain.RecentWindow `json:"window"`
}

// DefaultView is what a fresh session shows.
func DefaultView() View {
	return View{Location: domain.AllBookmarks, Window: domain.DefaultWindow}
}

// Session is one logged-in user: the in-memory store fed by the change feed
// plus per-user view state.
type Session struct {
	uid   string
	index *index.MemoryIndex

	cancel func()
	ready  chan struct{} // closed on the first snapshot
	done   chan struct{} // closed when the feed ends

	mu       sync.RWMutex
	view     View
	err      error // terminal feed error, nil while the feed runs
	watchers map[int]chan *domain.Snapshot
	nextID   int
}

func newSession(uid string) *Session {
	return &Session{
		uid:      uid,
		index:    index.NewMemoryIndex(),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		view:     DefaultView(),
		watchers: make(map[int]chan *domain.Snapshot),
	}
}

// UserID returns the owner of the session.
func (s *Session) UserID() string { return s.uid }

// Snapshot returns the latest snapshot received from the feed.
func (s *Session) Snapshot() *domain.Snapshot { return s.index.Snapshot() }

// Store returns the in-memory index backing the session.
func (s *Session) Store() *index.MemoryIndex { return s.index }

// View returns the active location and window.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView replaces the active location and window. An empty window keeps
// the current one.
func (s *Session) SetView(v View) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.Window == "" {
		v.Window = s.view.Window
	}
	s.view = v
	return s.view
}

// Err returns the error that ended the feed, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Ready reports whether the first snapshot has arrived.
func (s *Session) Ready() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Live reports whether the change feed is still running.
func (s *Session) Live() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// folderDeleted falls back to All Bookmarks when the active view was folderID.
func (s *Session) folderDeleted(folderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Location.Kind == domain.LocationFolder && s.view.Location.Folder == folderID {
		s.view.Location = domain.AllBookmarks
		return true
	}
	return false
}

// Watch registers a consumer of snapshot updates. The current snapshot is
// delivered first. Slow consumers only ever see the latest snapshot. The
// channel is closed when the session ends or stop is called.
func (s *Session) Watch() (<-chan *domain.Snapshot, func()) {
	ch := make(chan *domain.Snapshot, 1)

	// Holding the write lock keeps publish out until ch is registered.
	s.mu.Lock()
	ch <- s.index.Snapshot()
	if !s.Live() {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if w, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(w)
			}
		})
	}
	return ch, stop
}

func (s *Session) publish(snap *domain.Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers {
		// Replace an unread snapshot with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Session) closeWatchers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
}
