package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Recovery recovers from panics, logs them and answers 500.
func Recovery(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				panicErr := fmt.Errorf("panic recovered: %v", r)

				fields := []zap.Field{
					zap.Error(panicErr),
					zap.ByteString("stack", stack),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
				}

				if requestID := GetRequestID(c); requestID != "" {
					fields = append(fields, zap.String("request_id", requestID))
				}
				if userID := UserID(c); userID != "" {
					fields = append(fields, zap.String("user_id", userID))
				}

				logger.Error("panic recovered", fields...)

				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
				})
			}
		}()

		return c.Next()
	}
}
