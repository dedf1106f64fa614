package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/02loveslollipop/water-quality-viewer/internal/dashboard"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// hub fans dashboard events out to websocket clients.
type hub struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	clients map[*websocket.Conn]bool
	logger  *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) send(conn *websocket.Conn, data []byte) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *hub) broadcast(ev dashboard.Event) {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", zap.Error(err))
		return
	}

	for _, client := range clients {
		if err := h.send(client, data); err != nil {
			h.remove(client)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]bool)
	h.mu.Unlock()
	for client := range clients {
		client.Close()
	}
}

// handleV1RealtimeWS streams dashboard events; the current state is sent first
// GET /api/v1/realtime/ws
func (s *Server) handleV1RealtimeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	snap := s.dash.Snapshot()
	hello := dashboard.Event{
		Type:       "snapshot",
		Generation: snap.Generation,
		Count:      snap.Series.Len(),
		Indicator:  snap.Indicator,
	}
	if data, err := json.Marshal(hello); err == nil {
		if err := s.hub.send(conn, data); err != nil {
			conn.Close()
			return
		}
	}

	s.hub.add(conn)
	s.logger.Debug("websocket client connected", zap.Int("clients", s.hub.count()))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.remove(conn)
			return
		}
	}
}
