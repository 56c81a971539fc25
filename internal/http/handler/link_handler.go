package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkMe/internal/app/model"
	"github.com/sifan077/LinkMe/internal/app/service"
	"github.com/sifan077/LinkMe/internal/http/middleware"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	"go.uber.org/zap"
)

// LinkDeps groups dependencies required by link handlers.
type LinkDeps struct {
	Logger *zap.Logger
	Links  service.LinkService
}

// LinkHandler implements the link endpoints. Every route requires a session.
type LinkHandler struct {
	logger *zap.Logger
	links  service.LinkService
}

// NewLinkHandler creates a link handler with the provided dependencies.
func NewLinkHandler(deps LinkDeps) *LinkHandler {
	return &LinkHandler{
		logger: logger.OrNop(deps.Logger),
		links:  deps.Links,
	}
}

// Register wires link routes onto the provided router. The search route is
// registered before /:id so it is not captured as an id.
func (h *LinkHandler) Register(router fiber.Router) {
	router.Get("/", h.ListLinks)
	router.Post("/", h.CreateLink)
	router.Get("/search", h.SearchLinks)
	router.Put("/:id", h.UpdateLink)
	router.Delete("/:id", h.DeleteLink)
}

// LinkRequest is the body for creating or replacing a link.
type LinkRequest struct {
	FolderID string   `json:"folder_id"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Keywords []string `json:"keywords"`
}

func (r LinkRequest) input() service.LinkInput {
	return service.LinkInput{
		FolderID: strings.TrimSpace(r.FolderID),
		Title:    strings.TrimSpace(r.Title),
		URL:      strings.TrimSpace(r.URL),
		Keywords: r.Keywords,
	}
}

// ListLinks handles GET /api/links
func (h *LinkHandler) ListLinks(c *fiber.Ctx) error {
	links, err := h.links.ListUserLinks(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, "list links", err)
	}
	return c.JSON(links)
}

// CreateLink handles POST /api/links
func (h *LinkHandler) CreateLink(c *fiber.Ctx) error {
	var req LinkRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	link, err := h.links.CreateLink(c.UserContext(), middleware.UserID(c), req.input())
	if err != nil {
		return respondError(c, h.logger, "create link", err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

// UpdateLink handles PUT /api/links/:id. All fields are replaced.
func (h *LinkHandler) UpdateLink(c *fiber.Ctx) error {
	var req LinkRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	link, err := h.links.UpdateLink(c.UserContext(), middleware.UserID(c), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, h.logger, "update link", err)
	}
	return c.JSON(link)
}

// DeleteLink handles DELETE /api/links/:id
func (h *LinkHandler) DeleteLink(c *fiber.Ctx) error {
	if err := h.links.DeleteLink(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, "delete link", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchLinks handles GET /api/links/search?q=
func (h *LinkHandler) SearchLinks(c *fiber.Ctx) error {
	results, err := h.links.SearchLinks(c.UserContext(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		return respondError(c, h.logger, "search links", err)
	}
	if results == nil {
		results = []model.LinkWithFolder{}
	}
	return c.JSON(results)
}
