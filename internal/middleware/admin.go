package middleware

import (
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/config"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/session"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminRequired admits callers that are admins by:
// 1. the role claim of the access token
// 2. the Role column of their user row
// 3. ADMIN_EMAILS
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer := session.FromContext(c)
		if !viewer.Authenticated() {
			return unauthorized(c, "Unauthorized")
		}
		if viewer.Role == models.RoleAdmin {
			return c.Next()
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, viewer.UserID).Error; err == nil {
			if user.Role == models.RoleAdmin || cfg.IsAdminEmail(user.Email) {
				return c.Next()
			}
		}

		return handlers.Fail(c, fiber.StatusForbidden, "admin_required", "Admin access required")
	}
}
