package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// HealthDeps groups dependencies required by the health handler.
type HealthDeps struct {
	Logger *zap.Logger
	Checks map[string]HealthCheck
	Now    func() time.Time
}

// HealthHandler reports whether the service and its dependencies are up.
type HealthHandler struct {
	logger *zap.Logger
	checks map[string]HealthCheck
	now    func() time.Time
}

// NewHealthHandler creates a health handler with the provided dependencies.
func NewHealthHandler(deps HealthDeps) *HealthHandler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &HealthHandler{
		logger: logger.OrNop(deps.Logger),
		checks: deps.Checks,
		now:    now,
	}
}

// Register wires the health route onto the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
}

// Health handles GET /health. It answers 503 when any check fails.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	code := fiber.StatusOK
	results := make(fiber.Map, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			results[name] = "down"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	return c.Status(code).JSON(fiber.Map{
		"service": "LinkMe",
		"status":  status,
		"checks":  results,
		"time":    h.now().UTC().Format(time.RFC3339),
	})
}
