// FILE: internal/controller/presence_controller.go
package controller

import (
	"bufio"
	"bytes"
	"context"
	"time"

	"workshop-app-be/internal/dto"
	"workshop-app-be/internal/navigation"
	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/pkg/metrics"
	"workshop-app-be/internal/pkg/serverutils"
	"workshop-app-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const presenceEvent = "presence"

type IPresenceController interface {
	RegisterRoutes(r fiber.Router)
	GetPresence(ctx *fiber.Ctx) error
	StreamPresence(ctx *fiber.Ctx) error
	IngestEvent(ctx *fiber.Ctx) error
}

type presenceController struct {
	// streams end when baseCtx is done
	baseCtx           context.Context
	navigationService service.INavigationService
	presenceService   service.IPresenceService
	tick              time.Duration
	logger            logger.ILogger
	metrics           *metrics.Metrics
}

func NewPresenceController(
	baseCtx context.Context,
	navigationService service.INavigationService,
	presenceService service.IPresenceService,
	tick time.Duration,
	log logger.ILogger,
	m *metrics.Metrics,
) IPresenceController {
	if tick <= 0 {
		tick = 15 * time.Second
	}
	return &presenceController{
		baseCtx:           baseCtx,
		navigationService: navigationService,
		presenceService:   presenceService,
		tick:              tick,
		logger:            log,
		metrics:           m,
	}
}

func (c *presenceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/presence")
	h.Get("/", c.GetPresence)
	h.Get("/stream", c.StreamPresence)
	h.Post("/events", c.IngestEvent)
}

func (c *presenceController) GetPresence(ctx *fiber.Ctx) error {
	var query dto.PresenceQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	res, err := c.navigationService.GetPresence(ctx.UserContext(), &query, serverutils.CurrentUser(ctx))
	if err != nil {
		return catalogError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get presence", res))
}

// StreamPresence pushes the viewer's face pile whenever it changes, and on
// every tick so time-based scores stay fresh. The aggregator lives exactly
// as long as the connection.
func (c *presenceController) StreamPresence(ctx *fiber.Ctx) error {
	var query dto.PresenceQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	viewer, err := c.navigationService.Viewer(ctx.UserContext(), &query)
	if err != nil {
		return catalogError(ctx, err)
	}

	limit := 0
	if query.Expanded {
		limit = navigation.ExpandedPresenceLimit
	}
	currentUserID := service.CurrentUserID(serverutils.CurrentUser(ctx))
	labels := c.presenceService.Labels()
	agg, stop := c.presenceService.Watch(viewer)

	serverutils.SetSSEHeaders(ctx)
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		c.metrics.StreamOpened()
		defer c.metrics.StreamClosed()
		defer stop()

		ticker := time.NewTicker(c.tick)
		defer ticker.Stop()

		send := func() error {
			pile := labels.BuildFacePile(agg.Snapshot(limit), query.Expanded, currentUserID)
			return serverutils.WriteSSE(w, presenceEvent, pile)
		}
		if err := send(); err != nil {
			return
		}
		for {
			select {
			case <-c.baseCtx.Done():
				return
			case <-agg.Changed():
			case <-ticker.C:
			}
			if err := send(); err != nil {
				c.logger.Debug("PresenceController", "Presence stream closed", map[string]interface{}{"error": err.Error()})
				return
			}
		}
	})
	return nil
}

// IngestEvent accepts one wire event. Malformed events are dropped further
// down the pipeline, so the response is always 202.
func (c *presenceController) IngestEvent(ctx *fiber.Ctx) error {
	payload := bytes.Clone(ctx.Body())
	if err := c.presenceService.Ingest(ctx.UserContext(), service.SourceHTTP, payload); err != nil {
		c.logger.Error("PresenceController", "Failed to queue presence event", map[string]interface{}{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusAccepted).JSON(dto.IngestResponse{Status: "accepted"})
}
