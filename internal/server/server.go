// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	_ "tgscraper/internal/docs" // swagger docs
	"tgscraper/internal/config"
	"tgscraper/internal/featureflags"
	"tgscraper/internal/middleware"
	"tgscraper/internal/models"
	"tgscraper/internal/notifications"
	"tgscraper/internal/repository"
	"tgscraper/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Scrape endpoint limit per admin subject (or IP when auth is off).
const (
	scrapeRateLimit  = 6
	scrapeRateWindow = 10 * time.Minute
)

// Options carries the optional collaborators of a Server. A nil Source
// leaves the scrape, import, refresh and reaction endpoints answering 503.
type Options struct {
	Source     service.PostSource
	Discoverer service.ChannelDiscoverer
	Alerts     service.AlertSender
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	channelRepo    repository.ChannelRepository
	postRepo       repository.PostRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager
	channelService *service.ChannelService
	scrapeService  *service.ScrapeService
	statsService   *service.StatsService
	rankingService *service.RankingService
}

// NewServer creates a Server using already-initialized dependencies.
// The bootstrap layer establishes DB/Redis and performs optional seeding.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts Options) (*Server, error) {
	channelRepo := repository.NewChannelRepository(db)
	postRepo := repository.NewPostRepository(db)

	middleware.InitMiddleware(cfg)
	prom := middleware.InitMetrics("tgscraper-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		channelRepo:    channelRepo,
		postRepo:       postRepo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	// Initialize notifier and hub if Redis is available
	var events service.EventPublisher
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
		events = server.notifier
	}

	server.channelService = service.NewChannelService(service.ChannelDeps{
		Channels:   channelRepo,
		Posts:      postRepo,
		Source:     opts.Source,
		Discoverer: opts.Discoverer,
	}, cfg.ChannelDelay())
	server.scrapeService = service.NewScrapeService(service.ScrapeDeps{
		Channels: channelRepo,
		Posts:    postRepo,
		Source:   opts.Source,
		Events:   events,
		Alerts:   opts.Alerts,
		Flags:    server.featureFlags,
	}, service.ScrapeConfig{
		DefaultLimit: cfg.ScrapePostLimit,
		ChannelDelay: cfg.ChannelDelay(),
	})
	server.statsService = service.NewStatsService(channelRepo, postRepo, service.StatsConfig{
		Window:   cfg.StatsWindow(),
		CacheTTL: cfg.StatsCacheTTL(),
	})
	server.rankingService = service.NewRankingService(postRepo)

	return server, nil
}

// Scraper exposes the scrape service so the scheduler shares its run lock.
func (s *Server) Scraper() *service.ScrapeService {
	return s.scrapeService
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request and trace IDs into the user context
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.Banner)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "tgscraper Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	admin := middleware.AdminRequired

	// Channel routes. Static segments before /:id.
	channels := api.Group("/channels")
	channels.Get("/", s.ListChannels)
	channels.Get("/with-stats", s.ListChannelsWithStats)
	channels.Post("/", admin, s.CreateChannel)
	channels.Post("/import", admin, s.ImportChannels)
	channels.Post("/refresh-subscribers", admin, s.RefreshSubscribers)
	channels.Get("/:id/messages", s.GetChannelMessages)
	channels.Get("/:id/posts/:messageId/reactions", s.GetPostReactions)
	channels.Patch("/:id/color", admin, s.SetChannelColor)
	channels.Delete("/:id/hard", admin, s.HardDeleteChannel)
	channels.Get("/:id", s.GetChannel)
	channels.Patch("/:id", admin, s.UpdateChannel)
	channels.Delete("/:id", admin, s.DeactivateChannel)

	// Scrape trigger
	api.Post("/scrape", admin, middleware.RateLimit(
		s.redis, scrapeRateLimit, scrapeRateWindow, "scrape"), s.TriggerScrape)

	// Stats
	stats := api.Group("/stats")
	stats.Get("/global", s.GetGlobalStats)
	stats.Get("/channels", s.GetChannelStats)
	stats.Get("/channels.csv", s.GetChannelStatsCSV)

	// Rankings
	api.Get("/posts/top", s.GetTopPosts)

	// Scrape event stream
	api.Get("/ws/scrape", middleware.WebSocketAdminRequired, s.ScrapeEventsHandler())

	api.Get("/feature-flags", admin, s.GetFeatureFlags)
}

// Banner handles GET /api/
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} object{message=string,version=string}
// @Router / [get]
func (s *Server) Banner(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":          "Telegram channel scraper API",
		"version":          "1.0.0",
		"source_available": s.scrapeService.Available(),
	})
}

// LivenessCheck answers liveness checks
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck answers readiness checks
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs caching and events; a missing client degrades, not fails.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"telegram": s.scrapeService.Available(),
		},
		"time": time.Now(),
	})
}

// NewApp builds a Fiber app with the standard error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   "tgscraper API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Relay scrape events from Redis to websocket watchers
	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the hub wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
