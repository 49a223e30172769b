package handler

import (
	"context"

	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/pkg/serverutils"
	internalWS "workshop-app-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type PresenceSocketHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewPresenceSocketHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *PresenceSocketHandler {
	return &PresenceSocketHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs upgrades to the live presence socket. Anonymous sockets are
// allowed; a token in the query (browsers) or the usual header/cookie ties
// the socket to its learner.
func (h *PresenceSocketHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	user := serverutils.CurrentUser(c)
	if tokenStr := c.Query("token"); tokenStr != "" && h.jwtSecret != "" {
		parsed, err := serverutils.ParseUserToken(h.jwtSecret, tokenStr)
		if err != nil {
			h.logger.Warn("PresenceSocketHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err.Error()})
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		user = parsed
	}

	return websocket.New(func(conn *websocket.Conn) {
		details := map[string]interface{}{"authenticated": user != nil}
		if user != nil {
			details["user_id"] = user.ID
		}
		h.logger.Info("PresenceSocketHandler", "Starting WebSocket session", details)
		internalWS.ServeWs(context.Background(), h.hub, conn, user)
		h.logger.Info("PresenceSocketHandler", "WebSocket session ended", details)
	})(c)
}

// RegisterRoutes registers the presence socket route.
func (h *PresenceSocketHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/presence/ws", h.ServeWs)
}
