package middleware

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/config"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/logging"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return handlers.Fail(c, fiber.StatusUnauthorized, "not_authenticated", message)
}

// JWTProtected requires a valid access token.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: logViewer,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
	})
}

// JWTOptional verifies the access token when one is sent and lets anonymous
// requests through. A bad token is still rejected.
func JWTOptional(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: logViewer,
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
	})
}

// logViewer tags the request's log context with the verified user id.
func logViewer(c *fiber.Ctx) error {
	if v := session.FromContext(c); v.Authenticated() {
		c.SetUserContext(logging.ContextWith(c.UserContext(), slog.Uint64("user_id", uint64(v.UserID))))
	}
	return c.Next()
}

// RequestLogContext copies the request id into the request's log context.
// Run it after the requestid middleware.
func RequestLogContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			c.SetUserContext(logging.ContextWith(c.UserContext(), slog.String("request_id", utils.CopyString(id))))
		}
		return c.Next()
	}
}
