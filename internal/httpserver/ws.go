// internal/httpserver/ws.go
//
// Live view feed over websockets.
//   - hub fans session views out to every connected page.
//   - Each client gets the current view first, then every change.
//   - A client whose buffer is full is dropped rather than slowing the session.
//   - Inbound messages are ignored; moves go through the JSON API.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/MediaComem/minesweeper/internal/session"
)

const (
	sendBuffer = 16
	writeWait  = 5 * time.Second
)

type wsClient struct {
	conn *websocket.Conn
	send chan session.View
}

type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

// Notify implements session.Observer.
func (h *hub) Notify(v session.View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- v:
		default:
			log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("ws client too slow, dropping")
			h.removeLocked(c)
		}
	}
}

// add registers c and queues snapshot() as its first message. Both happen under
// the hub lock so no broadcast can slip in ahead of the snapshot.
func (h *hub) add(c *wsClient, snapshot func() session.View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	c.send <- snapshot()
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *hub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// newUpgrader accepts same-process clients (no Origin) and the page at origin.
func newUpgrader(origin string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == origin
		},
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade failed")
		return
	}
	c := &wsClient{conn: conn, send: make(chan session.View, sendBuffer)}
	s.hub.add(c, s.game.View)
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("ws client connected")

	go c.writeLoop()

	// Read until the peer goes away; payloads are not used.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.remove(c)
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("ws client disconnected")
}

// writeLoop drains c.send until the hub closes it, then closes the socket.
func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for v := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(v); err != nil {
			log.Debug().Err(err).Msg("ws write failed")
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
