package handlers

import (
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/services"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/session"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	viewer := session.FromContext(c)
	page, err := h.userService.List(c.UserContext(), viewer.UserID, c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(page)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}
	user, err := h.userService.Get(c.UserContext(), session.FromContext(c).UserID, id)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}
	me, err := h.userService.Me(c.UserContext(), userID)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(me)
}

func (h *UserHandler) Subscribe(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}
	authorID, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}

	resp, err := h.userService.Subscribe(c.UserContext(), userID, authorID, recipesLimit(c))
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *UserHandler) Unsubscribe(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}
	authorID, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}

	if err := h.userService.Unsubscribe(c.UserContext(), userID, authorID); err != nil {
		return RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}
	page, err := h.userService.Subscriptions(c.UserContext(), userID,
		c.QueryInt("page", 1), c.QueryInt("limit", 0), recipesLimit(c))
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(page)
}

// recipesLimit reads ?recipes_limit; absent or negative means no cap.
func recipesLimit(c *fiber.Ctx) int {
	n := c.QueryInt("recipes_limit", -1)
	if n < 0 {
		return -1
	}
	return n
}
