package session

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client wraps one player's WebSocket connection. All writes to the
// underlying connection go through Send, so a single writePump goroutine
// owns the socket and concurrent SafeSend calls never race on it.
type Client struct {
	UserID   string
	Passcode string
	Conn     *websocket.Conn
	Send     chan []byte

	closed bool
	mu     sync.Mutex
}

// SafeSend enqueues data for delivery, returning false if the client's
// send buffer is full or the client has already been closed.
func (c *Client) SafeSend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		log.Printf("[Client] send buffer full for user %s, dropping message", c.UserID)
		return false
	}
}

// SafeClose closes the Send channel at most once.
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *Client) readPump(sm *SessionManager) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Client] readPump panic recovered for user %s: %v", c.UserID, r)
		}
		sm.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	consecutiveErrors := 0
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			consecutiveErrors++
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Client] unexpected close for user %s: %v", c.UserID, err)
			}
			if consecutiveErrors >= 3 {
				return
			}
			continue
		}
		consecutiveErrors = 0
		sm.handleClientMessage(c, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Client] write error for user %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
