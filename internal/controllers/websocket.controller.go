package controllers

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"volumescope/internal/logger"
	"volumescope/internal/middleware"
	"volumescope/internal/models"
	"volumescope/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
)

var clientSeq atomic.Uint64

// clientMessage is what dashboards send over the feed
type clientMessage struct {
	Type string `json:"type"` // "ping", "subscribe", "unsubscribe"
}

// NewWebSocketHandler upgrades connections and attaches them to the live feed
// hub. Browser origins are checked against the same allow-list as CORS on the
// API; requests without an Origin header are not browsers and pass.
func NewWebSocketHandler(allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || middleware.OriginAllowed(origin, allowedOrigins)
		},
	}

	return func(c *gin.Context) {
		handleWebSocket(c, &upgrader)
	}
}

func handleWebSocket(c *gin.Context, upgrader *websocket.Upgrader) {
	hub := services.GetWebSocketHub()
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "live feed not running"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("[WS] Upgrade error from %s: %v", c.ClientIP(), err)
		return
	}

	client := &services.ClientConnection{
		ID:    fmt.Sprintf("%s-%d", c.ClientIP(), clientSeq.Add(1)),
		Conn:  ws,
		Send:  make(chan services.WebSocketMessage, 256),
		Close: make(chan bool),
	}

	hub.Register(client)

	go readPump(client, hub)
	go writePump(client)
}

// readPump reads messages from the WebSocket client
func readPump(client *services.ClientConnection, hub *services.WebSocketHub) {
	defer func() {
		close(client.Close)
		hub.Unregister(client.ID)
		client.Conn.Close()
	}()

	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("[WS] Read error from %s: %v", client.ID, err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			hub.SendTo(client.ID, services.WebSocketMessage{Type: services.MessagePong, Timestamp: time.Now()})

		case "subscribe":
			// Every client already receives every message
			logger.Debug("[WS] Client %s subscribed to updates", client.ID)

		case "unsubscribe":
			return

		default:
			logger.Debug("[WS] Unknown message type from %s: %s", client.ID, msg.Type)
		}
	}
}

// writePump writes messages to the WebSocket client
func writePump(client *services.ClientConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Warn("[WS] Write error to %s: %v", client.ID, err)
				}
				return
			}

		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.Close:
			_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
