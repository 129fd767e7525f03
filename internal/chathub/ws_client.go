package chathub

import (
	"encoding/json"
	"log"
	"time"

	"wegochat/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Image messages carry the encoded blob in Content.
	maxMessageSize = 1 << 20
)

// WebSocketClient implements the Client interface on a gorilla
// websocket connection.
type WebSocketClient struct {
	UserID   string
	Conn     *websocket.Conn
	Hub      *ManagerService
	Messages MessageSender
	Send     chan models.Event
}

func (c *WebSocketClient) GetUserID() string                   { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Event { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the writePump. The readPump
// stops on its own once the connection closes.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump reads frames off the websocket and dispatches them: room
// joins go to the hub, message sends go through the pipeline.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var frame models.ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("Error decoding frame from user %s: %v", c.UserID, err)
			continue
		}

		switch frame.Event {
		case models.FrameJoinRoom:
			if frame.Room != "" {
				c.Hub.JoinRoom(c, frame.Room)
			}

		case models.FrameSendMessage:
			// The sender identity always comes from the authenticated
			// connection, never from the frame.
			if _, err := c.Messages.Submit(c.UserID, frame.Room, frame.Content, frame.Type); err != nil {
				log.Printf("WARNING: send_message from %s to %s: %v", c.UserID, frame.Room, err)
			}

		default:
			log.Printf("Unknown frame %q from user %s", frame.Event, c.UserID)
		}
	}
}

// writePump drains the Send channel onto the websocket and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub, close the connection.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error encoding event for user %s: %v", c.UserID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
