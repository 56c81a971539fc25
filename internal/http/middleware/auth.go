package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkMe/internal/app/model"
	"go.uber.org/zap"
)

const (
	localUserID = "user_id"
	localUser   = "user"
)

// SessionResolver maps a bearer token to the user owning an active session.
// It returns nil, nil when the token does not identify anyone.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*model.PublicUser, error)
}

// RequireSession rejects requests without an active session and stores the
// caller's identity for downstream handlers.
func RequireSession(resolver SessionResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return unauthorized(c)
		}

		user, err := resolver.CurrentUser(c.UserContext(), token)
		if err != nil {
			logger.Error("failed to resolve session",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if user == nil {
			return unauthorized(c)
		}

		c.Locals(localUserID, user.ID)
		c.Locals(localUser, user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserID returns the authenticated caller's id, or "" outside RequireSession.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// CurrentUser returns the authenticated caller, or nil outside RequireSession.
func CurrentUser(c *fiber.Ctx) *model.PublicUser {
	user, _ := c.Locals(localUser).(*model.PublicUser)
	return user
}
