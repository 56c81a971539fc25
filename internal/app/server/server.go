package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/LinkMe/config"
	"github.com/sifan077/LinkMe/internal/app/repository"
	"github.com/sifan077/LinkMe/internal/app/service"
	"github.com/sifan077/LinkMe/internal/http/handler"
	"github.com/sifan077/LinkMe/internal/http/middleware"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure dependencies required by the HTTP server.
type Dependencies struct {
	Logger    *zap.Logger
	HTTP      config.HTTPConfig
	RateLimit config.RateLimitConfig
	Postgres  *pgxpool.Pool
	Redis     *redis.Client
	Auth      service.AuthService
	Folders   service.FolderService
	Links     service.LinkService
	Activity  repository.ActivityRepository
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with all routes registered.
func New(deps Dependencies) *Server {
	deps.Logger = logger.OrNop(deps.Logger)

	app := fiber.New(fiber.Config{
		AppName:               "LinkMe",
		BodyLimit:             deps.HTTP.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(deps.Logger),
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	log := s.deps.Logger

	s.app.Use(middleware.Recovery(log))
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.CORS())
	s.app.Use(middleware.Logger(log))
	s.app.Use(middleware.Metrics())

	limiter := s.rateLimiter()
	if limiter != nil {
		s.app.Use(limiter(s.deps.RateLimit.MaxRequests, "linkme:ratelimit:api"))
	}

	handler.NewHealthHandler(handler.HealthDeps{
		Logger: log,
		Checks: s.healthChecks(),
	}).Register(s.app)

	api := s.app.Group("/api")

	auth := api.Group("/auth")
	if limiter != nil {
		auth.Use(limiter(s.deps.RateLimit.AuthMaxRequests, "linkme:ratelimit:auth"))
	}
	handler.NewAuthHandler(handler.AuthDeps{
		Logger: log,
		Auth:   s.deps.Auth,
	}).Register(auth)

	// Registered after the auth routes so signup and login never reach it.
	protected := api.Group("", middleware.RequireSession(s.deps.Auth, log))
	if limiter != nil {
		protected.Use(limiter(s.deps.RateLimit.MaxRequests, "linkme:ratelimit:api"))
	}

	handler.NewFolderHandler(handler.FolderDeps{
		Logger:  log,
		Folders: s.deps.Folders,
		Links:   s.deps.Links,
	}).Register(protected.Group("/folders"))

	handler.NewLinkHandler(handler.LinkDeps{
		Logger: log,
		Links:  s.deps.Links,
	}).Register(protected.Group("/links"))

	handler.NewExportHandler(handler.ExportDeps{
		Logger:  log,
		Folders: s.deps.Folders,
		Links:   s.deps.Links,
	}).Register(protected)

	if s.deps.Activity != nil {
		handler.NewActivityHandler(handler.ActivityDeps{
			Logger:   log,
			Activity: s.deps.Activity,
		}).Register(protected)
	}
}

// rateLimiter returns a constructor for Redis-backed limiters, or nil when
// rate limiting is off or Redis is not configured.
func (s *Server) rateLimiter() func(max int, prefix string) fiber.Handler {
	if !s.deps.RateLimit.Enabled || s.deps.Redis == nil {
		return nil
	}
	return func(max int, prefix string) fiber.Handler {
		return middleware.RateLimit(s.deps.Redis, middleware.RateLimitConfig{
			MaxRequests: max,
			Window:      s.deps.RateLimit.Window,
			KeyPrefix:   prefix,
		}, s.deps.Logger)
	}
}

func (s *Server) healthChecks() map[string]handler.HealthCheck {
	checks := make(map[string]handler.HealthCheck)
	if s.deps.Postgres != nil {
		checks["postgres"] = s.deps.Postgres.Ping
	}
	if s.deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.deps.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// errorHandler renders errors that escape handlers, such as unknown routes or
// oversized bodies, in the API's JSON error shape.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled request error",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
