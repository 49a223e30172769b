package websocket

import (
	"context"

	"workshop-app-be/internal/model"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles websocket requests from the peer.
func ServeWs(ctx context.Context, hub *Hub, c *websocket.Conn, user *model.CurrentUser) {
	client := &Client{Hub: hub, Conn: c, ID: uuid.NewString(), User: user, Send: make(chan []byte, 256)}
	if !hub.Register(client) {
		c.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	client.readPump(ctx) // Run readPump in current goroutine (handler)
}
