// Package server contains the HTTP handlers and route table of the hub API.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "imhub/docs" // swagger docs
	"imhub/internal/auth"
	"imhub/internal/cache"
	"imhub/internal/config"
	"imhub/internal/content"
	"imhub/internal/database"
	"imhub/internal/feed"
	"imhub/internal/middleware"
	"imhub/internal/models"
	"imhub/internal/repository"
	"imhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	issuer         *auth.Issuer

	userRepo             repository.UserRepository
	groupRepo            *repository.GroupRepository
	resourceRepo         *repository.ResourceRepository
	submissionRepo       *repository.ContactSubmissionRepository
	contactRepo          *repository.ContactRepository
	announcementRepo     *repository.AnnouncementRepository
	linkRepo             *repository.LinkRepository
	userService          *service.UserService
	authService          *service.AuthService
	moderationService    *service.ModerationService
	feedClient           *feed.Client
	contentLoader        *content.Loader
	files                *content.FileStore
	submissionRateLimit  int
	submissionRateWindow time.Duration
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// performs explicit seeding. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("config and database are required")
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL())
	userRepo := repository.NewUserRepository(db)

	server := &Server{
		config:               cfg,
		db:                   db,
		redis:                redisClient,
		promMiddleware:       middleware.InitMetrics("imhub-api"),
		issuer:               issuer,
		userRepo:             userRepo,
		groupRepo:            repository.NewGroupRepository(db),
		resourceRepo:         repository.NewResourceRepository(db),
		submissionRepo:       repository.NewContactSubmissionRepository(db),
		contactRepo:          repository.NewContactRepository(db),
		announcementRepo:     repository.NewAnnouncementRepository(db),
		linkRepo:             repository.NewLinkRepository(db),
		userService:          service.NewUserService(userRepo, cfg.BcryptCost),
		moderationService:    service.NewModerationService(db),
		feedClient:           feed.NewClient(cfg.UpstreamFeedURL, cfg.UpstreamFeedTimeout()),
		contentLoader:        content.NewLoader(cfg.ContentPath),
		files:                content.NewFileStore(cfg.FilesDir),
		submissionRateLimit:  10,
		submissionRateWindow: 10 * time.Minute,
	}
	server.authService = service.NewAuthService(userRepo, issuer, service.FallbackAdmin{
		Enabled:  cfg.AdminFallbackEnabled,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})

	return server, nil
}

// NewApp builds a Fiber app with the full middleware stack and route table.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "IM Hub API",
		BodyLimit: 4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || c.Path() == "/metrics"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
				"code":  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	optional := middleware.OptionalAuth(s.issuer)
	strict := middleware.RequireAuth(s.issuer)
	admin := []fiber.Handler{strict, middleware.RequireAdmin()}
	submit := func(name string) fiber.Handler {
		return middleware.RateLimit(s.redis, s.submissionRateLimit, s.submissionRateWindow, name)
	}

	app.Get("/", s.Root)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Short link redirects live outside /api so they stay short.
	app.Get("/link/:slug", s.RedirectLink)

	api := app.Group("/api")
	api.Get("/health", s.HealthCheck)

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Get("/verify", strict, s.Verify)

	// Content routes
	api.Get("/login-content", s.GetLoginContent)
	api.Get("/content", strict, s.GetContent)
	api.Get("/navigation", strict, s.GetNavigation)
	api.Get("/dashboard/:id", strict, s.GetDashboard)
	api.Get("/form/:id", strict, s.GetForm)
	api.Get("/sector/:id", strict, s.GetSector)
	api.Get("/resources", strict, s.GetStaticResources)
	api.Get("/files/:filename", strict, s.DownloadFile)

	// Syndication
	api.Get("/announcements/rss", s.AnnouncementsRSS)
	api.Get("/mapaction-feed", strict, s.GetMapActionFeed)

	// Directory entities
	mountEntity(api.Group("/whatsapp-groups"), newEntityHandler(s.groupRepo), entityRoutes{
		list: []fiber.Handler{optional}, create: []fiber.Handler{optional, submit("submit_group")}, admin: admin,
	})
	mountEntity(api.Group("/resources-db"), newEntityHandler(s.resourceRepo), entityRoutes{
		list: []fiber.Handler{optional}, create: []fiber.Handler{optional, submit("submit_resource")}, admin: admin,
	})
	submissions := newEntityHandler(s.submissionRepo)
	submissions.defaultApprovedOnly = false
	mountEntity(api.Group("/contact-submissions"), submissions, entityRoutes{
		list: admin, create: []fiber.Handler{optional, submit("submit_contact")}, admin: admin,
	})
	mountEntity(api.Group("/contacts"), newEntityHandler(s.contactRepo), entityRoutes{
		list: []fiber.Handler{optional}, create: admin, admin: admin,
	})
	mountEntity(api.Group("/announcements"), newEntityHandler(s.announcementRepo), entityRoutes{
		list: []fiber.Handler{optional}, create: admin, admin: admin,
	})
	links := newEntityHandler(s.linkRepo.EntityRepository)
	links.prepare = attributeCreator
	mountEntity(api.Group("/links"), links, entityRoutes{
		list: []fiber.Handler{optional}, create: []fiber.Handler{optional, submit("submit_link")}, admin: admin,
	})

	// User administration
	users := api.Group("/users", admin...)
	users.Get("/", s.ListUsers)
	users.Post("/", s.CreateUser)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	// Admin routes
	adminGroup := api.Group("/admin", admin...)
	adminGroup.Get("/moderation/queue", s.GetModerationQueue)
}

// Root handles GET /
func (s *Server) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "IM Hub API", "status": "running"})
}

// HealthCheck handles GET /api/health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string}
// @Router /health [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": nowUTC().Format(time.RFC3339Nano),
	})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   nowUTC(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so its
// absence is reported without failing the probe.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "IM Hub API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": nowUTC(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
