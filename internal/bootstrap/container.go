package bootstrap

import (
	"context"
	"fmt"

	"workshop-app-be/internal/catalog"
	"workshop-app-be/internal/config"
	"workshop-app-be/internal/controller"
	"workshop-app-be/internal/handler"
	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/pkg/metrics"
	"workshop-app-be/internal/presence"
	"workshop-app-be/internal/repository/contract"
	"workshop-app-be/internal/repository/implementation"
	"workshop-app-be/internal/repository/memory"
	"workshop-app-be/internal/service"
	"workshop-app-be/internal/websocket"

	pktNats "workshop-app-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PresenceTopic is the in-process topic every presence source publishes to.
const PresenceTopic = "presence.events"

type Container struct {
	// Controllers
	NavigationController controller.INavigationController
	PresenceController   controller.IPresenceController
	CoachController      controller.ICoachController

	// WebSockets
	PresenceSocketHandler *handler.PresenceSocketHandler
	WebSocketHub          *websocket.Hub

	// Background Services (Exposed for main.go to run)
	PresenceFeedService service.IPresenceFeedService
	PublisherService    service.IPublisherService

	Feed     *presence.Feed
	Logger   logger.ILogger
	Metrics  *metrics.Metrics
	Registry prometheus.Registerer

	cfg     *config.Config
	pubSub  *gochannel.GoChannel
	rdb     *redis.Client
	natsSub *pktNats.Subscriber
}

// NewContainer wires the application. db may be nil, in which case progress
// is kept in memory. Streams end when baseCtx is done.
func NewContainer(baseCtx context.Context, cfg *config.Config, db *gorm.DB, reg prometheus.Registerer) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	presenceLogger := logger.NewIsolatedLogger(cfg.App.PresenceLogPath)
	m := metrics.New(reg)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            cfg.Presence.BusBufferSize,
			BlockPublishUntilSubscriberAck: true,
		},
		watermill.NewStdLogger(false, false),
	)

	// 3. Presence
	feed := presence.NewFeed(cfg.Presence.StaleAfter, presenceLogger, m)
	ingress := presence.NewIngress(feed, presenceLogger, m)

	var promo *presence.PromoEntry
	if cfg.Presence.PromoEnabled {
		promo = presence.DefaultPromo()
	}
	labels := presence.DefaultLabels()
	labels.LearningHost = cfg.Presence.LearningHost

	publisherService := service.NewPublisherService(PresenceTopic, pubSub)
	presenceService := service.NewPresenceService(
		feed,
		presence.NewScorePolicy(cfg.Presence.ScorePolicy, cfg.Presence.HalfLife),
		promo,
		labels,
		publisherService,
	)

	// 4. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL, sysLogger)
	wsHub := websocket.NewHub(rdb, cfg.Presence.RedisChannel, cfg.App.InstanceID, presenceService, presenceLogger, m)

	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
		} else {
			natsSub = sub
		}
	}

	feedService := service.NewPresenceFeedService(pubSub, PresenceTopic, ingress, wsHub, presenceLogger)

	// 5. Navigation
	ttl := cfg.Workshop.CacheTTL
	if !cfg.App.EnableWatcher {
		ttl = cache.NoExpiration
	}
	catalogProvider := catalog.NewFileProvider(cfg.Workshop.CatalogPath, ttl)

	var progressRepo contract.ProgressRepository
	if db != nil {
		progressRepo = implementation.NewProgressRepository(db)
	} else {
		progressRepo = memory.NewProgressRepository()
	}

	navigationService := service.NewNavigationService(
		catalogProvider,
		progressRepo,
		presenceService,
		service.Deployment{IsDeployed: cfg.Workshop.Deployed, GithubRepo: cfg.Workshop.GithubRepo},
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		NavigationController:  controller.NewNavigationController(navigationService),
		PresenceController:    controller.NewPresenceController(baseCtx, navigationService, presenceService, cfg.Presence.StreamTick, presenceLogger, m),
		CoachController:       controller.NewCoachController(baseCtx, cfg.Coach.InitialDelay, cfg.Coach.CharDelay, sysLogger, m),
		PresenceSocketHandler: handler.NewPresenceSocketHandler(wsHub, cfg.Keys.JWTSecret, presenceLogger),
		WebSocketHub:          wsHub,

		PresenceFeedService: feedService,
		PublisherService:    publisherService,

		Feed:     feed,
		Logger:   sysLogger,
		Metrics:  m,
		Registry: reg,

		cfg:     cfg,
		pubSub:  pubSub,
		rdb:     rdb,
		natsSub: natsSub,
	}
}

// Start launches the background workers: the bus consumer, the socket hub
// and, when NATS is configured, the NATS forwarder. They stop with ctx.
func (c *Container) Start(ctx context.Context) error {
	if err := c.PresenceFeedService.Consume(ctx); err != nil {
		return fmt.Errorf("presence consumer: %w", err)
	}

	go c.WebSocketHub.Run(ctx, c.Feed)

	if c.natsSub != nil {
		consumerName := "presence-feed-" + c.cfg.App.InstanceID
		if err := service.ForwardFromNATS(ctx, c.natsSub, c.cfg.Presence.NatsSubject, consumerName, c.PublisherService); err != nil {
			c.Logger.Warn("Bootstrap", "NATS presence forwarding disabled", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Close releases connections. Call after the workers' context is done.
func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			c.Logger.Warn("Bootstrap", "Failed to close Redis", map[string]interface{}{"error": err.Error()})
		}
	}
	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn("Bootstrap", "Failed to close event bus", map[string]interface{}{"error": err.Error()})
	}
}

// connectRedis returns nil when url is empty. An unreachable server is
// logged and kept; the client reconnects on its own.
func connectRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	return rdb
}
