package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkMe/internal/app/model"
	"github.com/sifan077/LinkMe/internal/app/repository"
	"github.com/sifan077/LinkMe/internal/http/middleware"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	"go.uber.org/zap"
)

// ActivityDeps groups dependencies required by the activity handler.
type ActivityDeps struct {
	Logger   *zap.Logger
	Activity repository.ActivityRepository
}

// ActivityHandler lists the caller's recorded activity events.
type ActivityHandler struct {
	logger   *zap.Logger
	activity repository.ActivityRepository
}

// NewActivityHandler creates an activity handler with the provided dependencies.
func NewActivityHandler(deps ActivityDeps) *ActivityHandler {
	return &ActivityHandler{
		logger:   logger.OrNop(deps.Logger),
		activity: deps.Activity,
	}
}

// Register wires the activity route onto the provided router.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/activity", h.ListActivity)
}

// ListActivity handles GET /api/activity?limit=
func (h *ActivityHandler) ListActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	events, err := h.activity.ListByUser(c.UserContext(), middleware.UserID(c), limit)
	if err != nil {
		return respondError(c, h.logger, "list activity", err)
	}
	if events == nil {
		events = []model.ActivityEvent{}
	}
	return c.JSON(events)
}
