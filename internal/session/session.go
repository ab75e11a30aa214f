package session

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrAnonymous = errors.New("no authenticated user in context")

// Viewer is the identity attached to a request by the JWT middleware.
// The zero value is the anonymous viewer.
type Viewer struct {
	UserID uint
	Role   models.Role
}

func (v Viewer) Authenticated() bool { return v.UserID != 0 }

// FromContext reads the viewer from the verified token stored in locals.
func FromContext(c *fiber.Ctx) Viewer {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Viewer{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Viewer{}
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return Viewer{}
	}
	role, _ := claims["role"].(string)
	if !models.Role(role).Valid() {
		role = string(models.RoleUser)
	}
	return Viewer{UserID: uint(id), Role: models.Role(role)}
}

// GetUserID returns the authenticated user id or ErrAnonymous.
func GetUserID(c *fiber.Ctx) (uint, error) {
	v := FromContext(c)
	if !v.Authenticated() {
		return 0, ErrAnonymous
	}
	return v.UserID, nil
}
