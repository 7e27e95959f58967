// Package ws pushes refresh events to connected clients so they can
// re-fetch their notification list without polling.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/taskhive-dev/taskhive/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Hub tracks open notification-stream connections per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*websocket.Conn]bool
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[uint]map[*websocket.Conn]bool),
		log:     log,
	}
}

// NotifyUser tells every open connection of userID that new notifications
// exist. Dead connections are dropped.
func (h *Hub) NotifyUser(userID uint) {
	h.mu.RLock()
	conns, exists := h.clients[userID]

	if !exists || len(conns) == 0 {
		h.mu.RUnlock()
		return
	}

	connsCopy := make([]*websocket.Conn, 0, len(conns))

	for conn := range conns {
		connsCopy = append(connsCopy, conn)
	}
	h.mu.RUnlock()

	for _, conn := range connsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":    "notifications_refresh",
			"message": "You have new notifications",
		})

		if err != nil {
			h.log.WithError(err).Warn("Failed to push notification refresh")
			h.remove(userID, conn)
			conn.Close()
		}
	}
}

func (h *Hub) add(userID uint, conn *websocket.Conn) {
	h.mu.Lock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}

	h.clients[userID][conn] = true
	h.mu.Unlock()
}

func (h *Hub) remove(userID uint, conn *websocket.Conn) {
	h.mu.Lock()

	if conns, exists := h.clients[userID]; exists {
		delete(conns, conn)

		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}

	h.mu.Unlock()
}

// Serve upgrades the request and keeps the connection alive with
// ping/pong until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)

	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.add(userID, conn)

	done := make(chan struct{})

	defer func() {
		close(done)
		h.remove(userID, conn)
		conn.Close()
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "Notification stream established",
	})

	if err != nil {
		return
	}

	// The pinger must watch done as well: stopping a ticker does not
	// close its channel, so ranging over it would block forever once the
	// session ends.
	ticker := time.NewTicker(pingPeriod)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).WithField("user_id", userID).Debug("WebSocket closed unexpectedly")
			}
			break
		}
	}
}
