package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bigsmall-bot/internal/predict"
)

// Hub fans each completed prediction out to WebSocket subscribers.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex
	broadcast chan *predict.Payload
	stop      chan struct{}
	wg        sync.WaitGroup
	metrics   MetricsInterface
	logger    zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan *predict.Payload, 64),
		stop:      make(chan struct{}),
		logger:    log.With().Str("component", "stream").Logger(),
	}
}

// SetMetrics attaches the metrics sink.
func (h *Hub) SetMetrics(m MetricsInterface) {
	h.metrics = m
}

// Start launches the writer goroutine.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.run()
}

// Stop ends the writer goroutine and closes every client.
func (h *Hub) Stop() {
	close(h.stop)
	h.wg.Wait()

	h.clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.clientsMu.Unlock()

	for _, conn := range conns {
		conn.Close()
		if h.metrics != nil {
			h.metrics.WSClientsAdd(-1)
		}
	}
}

// Broadcast queues a payload for fan-out. A full queue drops the
// payload rather than stalling the prediction cycle.
func (h *Hub) Broadcast(payload *predict.Payload) {
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn().Msg("broadcast queue full, payload dropped")
	}
}

// Handle upgrades the connection and keeps it registered until the
// client goes away. Subscribers receive every prediction completed
// while connected.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.clientsMu.Unlock()
	if h.metrics != nil {
		h.metrics.WSClientsAdd(1)
	}
	h.logger.Info().Str("remote", r.RemoteAddr).Int("clients", total).Msg("stream client connected")

	// inbound messages are ignored, the read loop only detects
	// disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(conn)
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case payload := <-h.broadcast:
			h.fanOut(payload)
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) fanOut(payload *predict.Payload) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("payload marshal failed")
		return
	}

	h.clientsMu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clientsMu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn().Err(err).Msg("dropping stream client")
			h.remove(conn)
		}
	}

	if h.metrics != nil {
		h.metrics.WSBroadcastsInc()
	}
}

// remove deregisters a client exactly once, no matter whether the
// read loop or a failed write gets there first.
func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	_, present := h.clients[conn]
	if present {
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	if present {
		conn.Close()
		if h.metrics != nil {
			h.metrics.WSClientsAdd(-1)
		}
	}
}
