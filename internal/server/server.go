package server

import (
	"log"

	"workshop-app-be/internal/bootstrap"
	"workshop-app-be/internal/config"
	"workshop-app-be/internal/dto"
	"workshop-app-be/internal/pkg/serverutils"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "workshop-app " + cfg.App.Version,
		BodyLimit: 64 * 1024, // presence events are small
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: cfg.App.CorsAllowedOrigins != "*", // fiber rejects credentials with a wildcard
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Cache-Control",
		AllowMethods:     "GET, POST, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	prom := fiberprometheus.NewWithRegistry(container.Registry, "workshop-app", "http", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Use(serverutils.ErrorHandlerMiddleware())
	app.Use(serverutils.OptionalUserMiddleware(cfg.Keys.JWTSecret))

	app.Get("/health", healthHandler(container))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func healthHandler(c *bootstrap.Container) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", dto.HealthResponse{
			Status:      "ok",
			Learners:    c.Feed.Len(),
			Subscribers: c.Feed.Subscribers(),
			Sockets:     c.WebSocketHub.Clients(),
		}))
	}
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.NavigationController.RegisterRoutes(api)
	c.PresenceController.RegisterRoutes(api)
	c.PresenceSocketHandler.RegisterRoutes(api)

	c.CoachController.RegisterRoutes(app)
}
