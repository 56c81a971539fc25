package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkMe/internal/app/service"
	"github.com/sifan077/LinkMe/internal/http/middleware"
	"github.com/sifan077/LinkMe/internal/http/view"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	"go.uber.org/zap"
)

const exportFilename = "linkme-bookmarks.html"

// ExportDeps groups dependencies required by the export handler.
type ExportDeps struct {
	Logger  *zap.Logger
	Folders service.FolderService
	Links   service.LinkService
}

// ExportHandler renders the caller's bookmarks as a browser-importable file.
type ExportHandler struct {
	logger  *zap.Logger
	folders service.FolderService
	links   service.LinkService
}

// NewExportHandler creates an export handler with the provided dependencies.
func NewExportHandler(deps ExportDeps) *ExportHandler {
	return &ExportHandler{
		logger:  logger.OrNop(deps.Logger),
		folders: deps.Folders,
		links:   deps.Links,
	}
}

// Register wires the export route onto the provided router.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/export", h.Export)
}

// Export handles GET /api/export
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)

	folders, err := h.folders.ListFolders(ctx, userID)
	if err != nil {
		return respondError(c, h.logger, "export folders", err)
	}
	links, err := h.links.ListUserLinks(ctx, userID)
	if err != nil {
		return respondError(c, h.logger, "export links", err)
	}

	html, err := view.RenderBookmarks(view.NewBookmarksData(folders, links))
	if err != nil {
		return respondError(c, h.logger, "render bookmarks", err)
	}

	c.Attachment(exportFilename)
	return c.
		Type("html", "utf-8").
		SendString(html)
}
