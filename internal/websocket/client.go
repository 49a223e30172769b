package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"workshop-app-be/internal/dto"
	"workshop-app-be/internal/model"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// ID identifies the connection; one learner may hold several.
	ID string

	// User is the logged-in learner, nil for anonymous sockets.
	User *model.CurrentUser

	// Buffered channel of outbound messages.
	Send chan []byte
}

func (c *Client) userID() string {
	if c.User == nil {
		return ""
	}
	return c.User.ID
}

// anonymousPrefix scopes the identity of a socket without a token to its
// connection.
const anonymousPrefix = "anon:"

// stampIdentity makes a socket speak only for itself. An authenticated
// socket takes the token's user id and fills a missing name or avatar from
// it; an anonymous one is pinned to an id derived from its connection.
func stampIdentity(payload []byte, user *model.CurrentUser, connectionID string) ([]byte, error) {
	var msg dto.PresenceEventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	if msg.User == nil {
		msg.User = &dto.PresenceUser{}
	}
	if user == nil || user.ID == "" {
		msg.User.ID = anonymousPrefix + connectionID
		return json.Marshal(msg)
	}
	msg.User.ID = user.ID
	if strings.TrimSpace(msg.User.Name) == "" {
		msg.User.Name = user.DisplayName()
	}
	if strings.TrimSpace(msg.User.AvatarURL) == "" {
		msg.User.AvatarURL = user.AvatarURL
	}
	return json.Marshal(msg)
}

// readPump pumps location updates from the websocket connection to the hub.
func (c *Client) readPump(ctx context.Context) {
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
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Debug("Client", "Unexpected close", map[string]interface{}{"connection_id": c.ID, "error": err.Error()})
			}
			break
		}
		c.Hub.handleInbound(ctx, c, message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
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
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per event so clients can parse each message alone
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Hub.logger.Debug("Client", "Ping failed", map[string]interface{}{"connection_id": c.ID, "error": err.Error()})
				return
			}
		}
	}
}
