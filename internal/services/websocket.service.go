package services

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"volumescope/internal/logger"
	"volumescope/internal/models"

	"github.com/gorilla/websocket"
)

// Message types pushed to live feed clients
const (
	MessageScanComplete = "scan_complete"
	MessageVolume       = "volume"
	MessagePong         = "pong"
	MessageError        = "error"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"` // "scan_complete", "volume", "ping", "pong", "error"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ClientConnection represents a connected WebSocket client
type ClientConnection struct {
	ID    string
	Conn  *websocket.Conn
	Send  chan WebSocketMessage
	Close chan bool
}

// WebSocketHub fans completed scans and periodic volume usage out to clients
type WebSocketHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	volumeRoot string
	interval   time.Duration
	volumeFn   func(string) (*models.VolumeUsage, error)
	fetching   atomic.Bool
	done       chan struct{}
	stopOnce   sync.Once
}

var (
	wsHub   *WebSocketHub
	wsHubMu sync.RWMutex
)

// InitWebSocketHub starts the hub. Volume usage of volumeRoot is pushed every
// interval; interval <= 0 disables the tick.
func InitWebSocketHub(volumeRoot string, interval time.Duration) *WebSocketHub {
	hub := NewWebSocketHub(volumeRoot, interval, GetCachedVolumeUsage)
	go hub.run()

	wsHubMu.Lock()
	wsHub = hub
	wsHubMu.Unlock()
	return hub
}

// NewWebSocketHub builds a hub without starting it
func NewWebSocketHub(volumeRoot string, interval time.Duration, volumeFn func(string) (*models.VolumeUsage, error)) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		volumeRoot: volumeRoot,
		interval:   interval,
		volumeFn:   volumeFn,
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in the background
func (h *WebSocketHub) Start() {
	go h.run()
}

func (h *WebSocketHub) run() {
	var tick <-chan time.Time
	if h.interval > 0 && h.volumeFn != nil {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			liveClients.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			liveClients.Set(float64(total))
			logger.Info("[WS] Client connected: %s (total: %d)", client.ID, total)

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			liveClients.Set(float64(total))
			logger.Info("[WS] Client disconnected: %s (total: %d)", clientID, total)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Slow client, drop this message for it
				}
			}
			h.mu.RUnlock()

		case <-tick:
			if h.ClientCount() == 0 {
				continue
			}
			// At most one lookup in flight; a slow mount skips ticks
			if h.fetching.CompareAndSwap(false, true) {
				go h.pushVolume()
			}
		}
	}
}

// pushVolume reads volume usage off the hub loop and queues the result, or an
// error message when the lookup fails
func (h *WebSocketHub) pushVolume() {
	defer h.fetching.Store(false)

	usage, err := h.volumeFn(h.volumeRoot)
	if err != nil {
		logger.Warn("[WS] Could not read volume usage for %s: %v", h.volumeRoot, err)
		h.enqueue(WebSocketMessage{
			Type:      MessageError,
			Timestamp: time.Now(),
			Error:     "volume usage unavailable: " + err.Error(),
		})
		return
	}
	h.enqueue(WebSocketMessage{
		Type:      MessageVolume,
		Timestamp: time.Now(),
		Data:      usage,
	})
}

func (h *WebSocketHub) enqueue(msg WebSocketMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Channel full, skip this broadcast
	}
}

// Register adds a new client to the hub
func (h *WebSocketHub) Register(client *ClientConnection) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// Broadcast queues a message for every connected client
func (h *WebSocketHub) Broadcast(msg WebSocketMessage) {
	h.enqueue(msg)
}

// SendTo queues a message for one client. It reports false when the client is
// gone or its buffer is full.
func (h *WebSocketHub) SendTo(clientID string, msg WebSocketMessage) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, exists := h.clients[clientID]
	if !exists {
		return false
	}
	select {
	case client.Send <- msg:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop shuts the hub down and closes every client's send channel
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// GetWebSocketHub returns the process-wide hub, or nil before InitWebSocketHub
func GetWebSocketHub() *WebSocketHub {
	wsHubMu.RLock()
	defer wsHubMu.RUnlock()
	return wsHub
}

// BroadcastScanResult pushes a completed scan to live clients. Only full
// results are ever sent.
func BroadcastScanResult(result *models.ScanResult) {
	hub := GetWebSocketHub()
	if hub == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("[WS] Error marshaling scan result: %v", err)
		return
	}

	hub.Broadcast(WebSocketMessage{
		Type:      MessageScanComplete,
		Timestamp: time.Now(),
		Data:      json.RawMessage(data),
	})
}

// StopWebSocketHub gracefully stops the process-wide hub
func StopWebSocketHub() {
	if hub := GetWebSocketHub(); hub != nil {
		hub.Stop()
	}
}
