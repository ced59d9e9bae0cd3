package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/pinchball/internal/game"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// TelemetryInterval is the broadcast period.
	TelemetryInterval = 50 * time.Millisecond
	// writeWait bounds a single websocket write.
	writeWait = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SnapshotSource supplies the latest published snapshot.
type SnapshotSource interface {
	Snapshot() game.Snapshot
}

// telemetryClient is one websocket subscriber. Binary clients receive
// msgpack frames, the rest JSON text frames.
type telemetryClient struct {
	conn   *websocket.Conn
	binary bool
}

// TelemetryHandler broadcasts snapshots to websocket clients whenever the
// tick advances.
type TelemetryHandler struct {
	source  SnapshotSource
	clients map[*websocket.Conn]*telemetryClient
	mu      sync.RWMutex
	stopCh  chan struct{}
	once    sync.Once
}

// NewTelemetryHandler creates a TelemetryHandler and starts its broadcaster.
func NewTelemetryHandler(source SnapshotSource) *TelemetryHandler {
	h := &TelemetryHandler{
		source:  source,
		clients: make(map[*websocket.Conn]*telemetryClient),
		stopCh:  make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// Close stops the broadcaster and disconnects every client.
func (h *TelemetryHandler) Close() {
	h.once.Do(func() {
		close(h.stopCh)

		h.mu.Lock()
		defer h.mu.Unlock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
	})
}

// Clients returns the number of connected subscribers.
func (h *TelemetryHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request. ?format=msgpack selects binary frames.
func (h *TelemetryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &telemetryClient{conn: conn, binary: r.URL.Query().Get("format") == "msgpack"}

	// The first frame goes out before registration so only the
	// broadcaster writes afterwards.
	msgType, data, err := encodeSnapshot(h.source.Snapshot(), c.binary)
	if err != nil {
		log.Printf("telemetry encode error: %v", err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(msgType, data); err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends each new snapshot to all connected clients.
func (h *TelemetryHandler) broadcast() {
	ticker := time.NewTicker(TelemetryInterval)
	defer ticker.Stop()

	var lastTick uint64
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		snap := h.source.Snapshot()
		if snap.Tick == lastTick {
			continue
		}
		lastTick = snap.Tick

		frames := make(map[bool][]byte, 2)
		h.mu.RLock()
		for conn, c := range h.clients {
			data, ok := frames[c.binary]
			if !ok {
				var err error
				if _, data, err = encodeSnapshot(snap, c.binary); err != nil {
					log.Printf("telemetry encode error: %v", err)
					continue
				}
				frames[c.binary] = data
			}
			msgType := websocket.TextMessage
			if c.binary {
				msgType = websocket.BinaryMessage
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(msgType, data); err != nil {
				// The reader loop sees the failure and unregisters.
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}

// encodeSnapshot returns the websocket message type and payload.
func encodeSnapshot(snap game.Snapshot, binary bool) (int, []byte, error) {
	if binary {
		data, err := msgpack.Marshal(&snap)
		return websocket.BinaryMessage, data, err
	}
	data, err := json.Marshal(snap)
	return websocket.TextMessage, data, err
}
