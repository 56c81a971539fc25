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

// FolderDeps groups dependencies required by folder handlers.
type FolderDeps struct {
	Logger  *zap.Logger
	Folders service.FolderService
	Links   service.LinkService
}

// FolderHandler implements the folder endpoints. Every route requires a session.
type FolderHandler struct {
	logger  *zap.Logger
	folders service.FolderService
	links   service.LinkService
}

// NewFolderHandler creates a folder handler with the provided dependencies.
func NewFolderHandler(deps FolderDeps) *FolderHandler {
	return &FolderHandler{
		logger:  logger.OrNop(deps.Logger),
		folders: deps.Folders,
		links:   deps.Links,
	}
}

// Register wires folder routes onto the provided router.
func (h *FolderHandler) Register(router fiber.Router) {
	router.Get("/", h.ListFolders)
	router.Post("/", h.CreateFolder)
	router.Get("/:id", h.GetFolder)
	router.Patch("/:id", h.RenameFolder)
	router.Delete("/:id", h.DeleteFolder)
	router.Get("/:id/links", h.ListFolderLinks)
}

// FolderRequest is the body for creating or renaming a folder.
type FolderRequest struct {
	Name string `json:"name"`
}

// ListFolders handles GET /api/folders
func (h *FolderHandler) ListFolders(c *fiber.Ctx) error {
	folders, err := h.folders.ListFolders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, "list folders", err)
	}
	if folders == nil {
		folders = []model.Folder{}
	}
	return c.JSON(folders)
}

// CreateFolder handles POST /api/folders
func (h *FolderHandler) CreateFolder(c *fiber.Ctx) error {
	var req FolderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	folder, err := h.folders.CreateFolder(c.UserContext(), middleware.UserID(c), strings.TrimSpace(req.Name))
	if err != nil {
		return respondError(c, h.logger, "create folder", err)
	}
	return c.Status(fiber.StatusCreated).JSON(folder)
}

// GetFolder handles GET /api/folders/:id and includes the folder's links.
func (h *FolderHandler) GetFolder(c *fiber.Ctx) error {
	folder, err := h.folders.GetFolderWithLinks(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "get folder", err)
	}
	if folder == nil {
		return errorJSON(c, fiber.StatusNotFound, service.ErrNotFoundOrUnauthorized.Error())
	}
	return c.JSON(folder)
}

// RenameFolder handles PATCH /api/folders/:id
func (h *FolderHandler) RenameFolder(c *fiber.Ctx) error {
	var req FolderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	folder, err := h.folders.RenameFolder(c.UserContext(), middleware.UserID(c), c.Params("id"), strings.TrimSpace(req.Name))
	if err != nil {
		return respondError(c, h.logger, "rename folder", err)
	}
	return c.JSON(folder)
}

// DeleteFolder handles DELETE /api/folders/:id
func (h *FolderHandler) DeleteFolder(c *fiber.Ctx) error {
	if err := h.folders.DeleteFolder(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, "delete folder", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListFolderLinks handles GET /api/folders/:id/links. Foreign or missing
// folders yield an empty list.
func (h *FolderHandler) ListFolderLinks(c *fiber.Ctx) error {
	links, err := h.links.ListFolderLinks(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "list folder links", err)
	}
	return c.JSON(links)
}
