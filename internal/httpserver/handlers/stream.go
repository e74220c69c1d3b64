package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/logger"
)

// streamKeepAlive is the interval of SSE comment lines keeping proxies open.
const streamKeepAlive = 15 * time.Second

// Stream pushes every snapshot of the caller's session as a server-sent
// "snapshot" event, starting with the current one. The stream ends when
// the client disconnects or the session is closed.
func Stream(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := openSession(d, r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		rc := http.NewResponseController(w)
		// The server write timeout would cut the stream.
		_ = rc.SetWriteDeadline(time.Time{})
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			d.Logger.Warn("event stream unsupported", logger.Error(err))
			return
		}

		updates, stop := s.Watch()
		defer stop()

		keepAlive := time.NewTicker(streamKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					_, _ = fmt.Fprint(w, "event: closed\ndata: {}\n\n")
					_ = rc.Flush()
					return
				}
				data, err := json.Marshal(snap)
				if err != nil {
					d.Logger.Error("failed to encode snapshot", logger.Error(err))
					return
				}
				if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Revision, data); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			case <-r.Context().Done():
				return
			}
		}
	}
}
