// FILE: internal/controller/coach_controller.go
package controller

import (
	"bufio"
	"context"
	"time"

	"workshop-app-be/internal/coach"
	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/pkg/metrics"
	"workshop-app-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type ICoachController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
}

type coachController struct {
	baseCtx      context.Context
	initialDelay time.Duration
	charDelay    time.Duration
	logger       logger.ILogger
	metrics      *metrics.Metrics
}

func NewCoachController(baseCtx context.Context, initialDelay, charDelay time.Duration, log logger.ILogger, m *metrics.Metrics) ICoachController {
	return &coachController{
		baseCtx:      baseCtx,
		initialDelay: initialDelay,
		charDelay:    charDelay,
		logger:       log,
		metrics:      m,
	}
}

func (c *coachController) RegisterRoutes(r fiber.Router) {
	r.Get("/coach-kody", c.Stream)
}

// Stream sends the coach greeting one character per frame, then closes.
// Every request gets a fresh producer.
func (c *coachController) Stream(ctx *fiber.Ctx) error {
	producer := coach.NewProducer(coach.WithDelays(c.initialDelay, c.charDelay))

	serverutils.SetSSEHeaders(ctx)
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		c.metrics.RecordCoachStream("started")
		if err := producer.WriteSSE(c.baseCtx, w); err != nil {
			c.metrics.RecordCoachStream("aborted")
			c.logger.Debug("CoachController", "Coach stream aborted", map[string]interface{}{"error": err.Error()})
			return
		}
		c.metrics.RecordCoachStream("completed")
	})
	return nil
}
