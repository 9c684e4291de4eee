package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients connect from app webviews, no fixed origin
	},
}

// NotificationHub tracks connected users (userId -> *websocket.Conn)
type NotificationHub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

var hub = &NotificationHub{
	clients: make(map[string]*websocket.Conn),
}

// HandleNotificationsWebSocket upgrades the connection and keeps it
// registered until the client disconnects. Targeted broadcast alerts are
// pushed over this socket as a lower-latency complement to polling.
func HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		conn.Close()
		return
	}

	hub.mutex.Lock()
	hub.clients[userID] = conn
	hub.mutex.Unlock()
	zap.S().Debugw("user connected to notifications socket", "userID", userID)

	conn.SetCloseHandler(func(code int, text string) error {
		hub.mutex.Lock()
		delete(hub.clients, userID)
		hub.mutex.Unlock()
		zap.S().Debugw("user disconnected from notifications socket", "userID", userID)
		return nil
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			break
		}
	}
}

// sendNotificationToUser pushes an event to a single connected user, silently
// doing nothing when they have no open socket
func sendNotificationToUser(userID string, payload interface{}) {
	hub.mutex.Lock()
	conn, exists := hub.clients[userID]
	hub.mutex.Unlock()

	if !exists {
		return
	}

	err := conn.WriteJSON(map[string]interface{}{
		"event": "crowdsource_broadcast",
		"data":  payload,
	})
	if err != nil {
		zap.S().Errorw("failed to send websocket notification", "userID", userID, "error", err)
		hub.mutex.Lock()
		delete(hub.clients, userID)
		hub.mutex.Unlock()
		conn.Close()
	}
}
