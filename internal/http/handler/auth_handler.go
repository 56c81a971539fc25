package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkMe/internal/app/service"
	"github.com/sifan077/LinkMe/internal/http/middleware"
	"github.com/sifan077/LinkMe/internal/infra/logger"
	"github.com/sifan077/LinkMe/internal/infra/metrics"
	"go.uber.org/zap"
)

// AuthDeps groups dependencies required by auth handlers.
type AuthDeps struct {
	Logger *zap.Logger
	Auth   service.AuthService
}

// AuthHandler implements signup, login and session endpoints.
type AuthHandler struct {
	logger *zap.Logger
	auth   service.AuthService
}

// NewAuthHandler creates an auth handler with the provided dependencies.
func NewAuthHandler(deps AuthDeps) *AuthHandler {
	return &AuthHandler{
		logger: logger.OrNop(deps.Logger),
		auth:   deps.Auth,
	}
}

// Register wires auth routes onto the provided router. None of them require
// an existing session.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/signup", h.Signup)
	router.Post("/login", h.Login)
	router.Post("/logout", h.Logout)
	router.Get("/me", h.Me)
	router.Get("/verify", h.Verify)
}

// SignupRequest represents the request body for creating an account.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts either an email or a username as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (r LoginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	result, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	recordAttempt("signup", err)
	if err != nil {
		return respondError(c, h.logger, "signup", err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	identifier := req.identifier()
	if identifier == "" || req.Password == "" {
		return errorJSON(c, fiber.StatusBadRequest, "identifier and password are required")
	}

	result, err := h.auth.Login(c.UserContext(), identifier, req.Password)
	recordAttempt("login", err)
	if err != nil {
		return respondError(c, h.logger, "login", err)
	}

	return c.JSON(result)
}

// Logout handles POST /api/auth/logout. It succeeds even when the token is
// unknown or already revoked.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), middleware.BearerToken(c)); err != nil {
		return respondError(c, h.logger, "logout", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.CurrentUser(c.UserContext(), middleware.BearerToken(c))
	if err != nil {
		return respondError(c, h.logger, "current user", err)
	}
	if user == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(user)
}

// Verify handles GET /api/auth/verify
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	valid, err := h.auth.VerifySession(c.UserContext(), middleware.BearerToken(c))
	if err != nil {
		return respondError(c, h.logger, "verify session", err)
	}
	return c.JSON(fiber.Map{"valid": valid})
}

func recordAttempt(operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		outcome = "invalid_credentials"
	case errors.Is(err, service.ErrDuplicateEmail), errors.Is(err, service.ErrDuplicateUsername):
		outcome = "duplicate"
	case errors.Is(err, service.ErrInvalidInput):
		outcome = "invalid_input"
	default:
		outcome = "error"
	}
	metrics.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}
