package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API serves a local single-user client; cross-origin pages are
	// allowed so the dapp frontend can connect during development.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// streamProposals pushes the current proposal snapshot on connect and a new
// snapshot after every applied refresh. Clients always see whole lists,
// never deltas.
func (h *handler) streamProposals(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	snapshots, cancel := h.app.Store.Subscribe()
	defer cancel()

	// Discard client frames but surface read errors so closed peers
	// terminate the write loop.
	readErr := make(chan struct{})
	go func() {
		defer close(readErr)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(views []proposalView) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(views)
	}

	if err := send(viewsOf(h)); err != nil {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-readErr:
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			views := make([]proposalView, 0, len(snapshot))
			for _, p := range snapshot {
				views = append(views, toView(p))
			}
			if err := send(views); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func viewsOf(h *handler) []proposalView {
	snapshot := h.app.Store.Snapshot()
	views := make([]proposalView, 0, len(snapshot))
	for _, p := range snapshot {
		views = append(views, toView(p))
	}
	return views
}
