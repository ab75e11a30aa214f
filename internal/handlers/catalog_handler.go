package handlers

import (
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.catalogService.ListTags(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(tags)
}

func (h *CatalogHandler) GetTag(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}
	tag, err := h.catalogService.GetTag(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(tag)
}

func (h *CatalogHandler) CreateTag(c *fiber.Ctx) error {
	var req dto.CreateTagRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	tag, err := h.catalogService.CreateTag(c.UserContext(), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

func (h *CatalogHandler) ListIngredients(c *fiber.Ctx) error {
	ingredients, err := h.catalogService.ListIngredients(c.UserContext(), c.Query("name"))
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(ingredients)
}

func (h *CatalogHandler) GetIngredient(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}
	ingredient, err := h.catalogService.GetIngredient(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(ingredient)
}

func (h *CatalogHandler) CreateIngredient(c *fiber.Ctx) error {
	var req dto.CreateIngredientRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	ingredient, err := h.catalogService.CreateIngredient(c.UserContext(), &req)
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ingredient)
}
