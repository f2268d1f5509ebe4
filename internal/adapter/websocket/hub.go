// Package websocket fans the live leaderboard out to overlay clients. A
// single hub goroutine owns all connection state and processes commands
// sequentially, so no locks are needed around the client set.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quikeats/Vouchy/internal/domain"
	"github.com/quikeats/Vouchy/internal/metrics"
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn  *websocket.Conn
	errCh chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	id     uuid.UUID
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		id:     uuid.New(),
		conn:   conn,
		sendCh: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// --- Hub ---

// leaderboardFrame is the wire format pushed to overlay clients.
type leaderboardFrame struct {
	Type    string               `json:"type"`
	Entries []domain.RankedEntry `json:"entries"`
}

type Hub struct {
	cmdCh      chan hubCmd
	clients    map[*websocket.Conn]*clientWriter
	maxClients int

	// lastFrame is replayed to new clients so overlays render the current
	// standings without waiting for the next vouch.
	lastFrame []byte
}

// NewHub creates a hub that accepts at most maxClients concurrent
// connections and starts its command loop.
func NewHub(maxClients int) *Hub {
	hub := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.conn)
		case cmdBroadcast:
			h.handleBroadcast(c.data)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting overlay client, connection limit reached", "limit", h.maxClients)
		metrics.WebSocketConnectionsRejected.WithLabelValues("capacity").Inc()
		c.conn.Close()
		c.errCh <- fmt.Errorf("max connections (%d) reached", h.maxClients)
		return
	}

	cw := newClientWriter(c.conn)
	h.clients[c.conn] = cw

	metrics.WebSocketConnectionsTotal.Inc()
	metrics.WebSocketConnectionsCurrent.Set(float64(len(h.clients)))
	slog.Info("Overlay client registered", "client_id", cw.id, "total_clients", len(h.clients))

	if h.lastFrame != nil {
		cw.sendCh <- h.lastFrame
	}
	c.errCh <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, conn)
	metrics.WebSocketConnectionsCurrent.Set(float64(len(h.clients)))
	slog.Info("Overlay client unregistered", "client_id", cw.id, "remaining_clients", len(h.clients))
}

func (h *Hub) handleBroadcast(data []byte) {
	h.lastFrame = data
	metrics.WebSocketBroadcastsTotal.Inc()

	var slow []*websocket.Conn
	for conn, cw := range h.clients {
		select {
		case cw.sendCh <- data:
			// sent successfully
		default:
			// client is slow, mark for removal
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow overlay client", "client_id", h.clients[conn].id)
		metrics.WebSocketSlowClientsEvicted.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
	}
	metrics.WebSocketConnectionsCurrent.Set(0)
}

// --- Public API ---

func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- cmdRegister{conn: conn, errCh: errCh}
	return <-errCh
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- cmdUnregister{conn: conn}
}

// Broadcast pushes a fresh leaderboard to every connected client. Clients
// whose send buffer is full are dropped rather than allowed to stall the
// rest of the fan-out.
func (h *Hub) Broadcast(entries []domain.RankedEntry) {
	if entries == nil {
		entries = []domain.RankedEntry{}
	}
	data, err := json.Marshal(leaderboardFrame{Type: "leaderboard", Entries: entries})
	if err != nil {
		slog.Error("Failed to marshal leaderboard frame", "error", err)
		return
	}
	h.cmdCh <- cmdBroadcast{data: data}
}

func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{replyCh: replyCh}
	return <-replyCh
}

func (h *Hub) Stop() {
	h.cmdCh <- cmdStop{}
}
