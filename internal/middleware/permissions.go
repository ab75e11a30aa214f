package middleware

import (
	"context"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/access"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/services"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/session"
	"github.com/gofiber/fiber/v2"
)

// OwnerLookup returns the owning user of the resource with the given id.
type OwnerLookup func(ctx context.Context, id uint) (uint, error)

// AuthenticatedOrReadOnly lets safe methods through and requires a session
// for everything else. Run it after JWTOptional.
func AuthenticatedOrReadOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if access.IsSafeMethod(c.Method()) || session.FromContext(c).Authenticated() {
			return c.Next()
		}
		return unauthorized(c, "Authentication credentials were not provided")
	}
}

// OwnerOrReadOnly lets safe methods through; other methods need a session
// whose user owns the resource named by the route parameter, or an admin.
func OwnerOrReadOnly(param string, owner OwnerLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if access.IsSafeMethod(c.Method()) {
			return c.Next()
		}
		viewer := session.FromContext(c)
		if !viewer.Authenticated() {
			return unauthorized(c, "Authentication credentials were not provided")
		}

		id, err := strconv.ParseUint(c.Params(param), 10, 64)
		if err != nil || id == 0 {
			return handlers.NotFound(c)
		}

		ownerID, err := owner(c.UserContext(), uint(id))
		if err != nil {
			return handlers.RespondError(c, err)
		}
		if !access.CanMutate(viewer.Role, ownerID == viewer.UserID) {
			return handlers.RespondError(c, services.ErrNotOwner)
		}
		return c.Next()
	}
}
