package handlers

import (
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/services"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/session"
	"github.com/gofiber/fiber/v2"
)

type RecipeHandler struct {
	recipeService   *services.RecipeService
	favorites       *services.RecipeListService[models.FavoriteRecipe]
	cart            *services.RecipeListService[models.ShoppingCart]
	shoppingService *services.ShoppingListService
}

func NewRecipeHandler(
	recipeService *services.RecipeService,
	favorites *services.RecipeListService[models.FavoriteRecipe],
	cart *services.RecipeListService[models.ShoppingCart],
	shoppingService *services.ShoppingListService,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		favorites:       favorites,
		cart:            cart,
		shoppingService: shoppingService,
	}
}

func (h *RecipeHandler) List(c *fiber.Ctx) error {
	filter := dto.RecipeFilter{
		AuthorID:         uint(max(c.QueryInt("author", 0), 0)),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		Page:             c.QueryInt("page", 1),
		Limit:            c.QueryInt("limit", 0),
	}
	for _, slug := range c.Context().QueryArgs().PeekMulti("tags") {
		filter.TagSlugs = append(filter.TagSlugs, string(slug))
	}

	page, err := h.recipeService.List(c.UserContext(), session.FromContext(c).UserID, filter)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(page)
}

func (h *RecipeHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}
	recipe, err := h.recipeService.Get(c.UserContext(), session.FromContext(c).UserID, id)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(recipe)
}

func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}

	var req dto.RecipeWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	recipe, err := h.recipeService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// Update runs behind OwnerOrReadOnly.
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}

	var req dto.RecipeWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	recipe, err := h.recipeService.Update(c.UserContext(), userID, id, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(recipe)
}

// Delete runs behind OwnerOrReadOnly.
func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}
	if err := h.recipeService.Delete(c.UserContext(), id); err != nil {
		return RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *fiber.Ctx) error {
	return addToList(c, h.favorites)
}

func (h *RecipeHandler) RemoveFavorite(c *fiber.Ctx) error {
	return removeFromList(c, h.favorites)
}

func (h *RecipeHandler) AddToCart(c *fiber.Ctx) error {
	return addToList(c, h.cart)
}

func (h *RecipeHandler) RemoveFromCart(c *fiber.Ctx) error {
	return removeFromList(c, h.cart)
}

func (h *RecipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}

	text, err := h.shoppingService.Build(c.UserContext(), userID)
	if err != nil {
		return RespondError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="shopping_list.txt"`)
	return c.SendString(text)
}

func addToList[T any](c *fiber.Ctx, list *services.RecipeListService[T]) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}
	recipeID, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}

	short, err := list.Add(c.UserContext(), userID, recipeID)
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(short)
}

func removeFromList[T any](c *fiber.Ctx, list *services.RecipeListService[T]) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return RespondError(c, err)
	}
	recipeID, ok := paramID(c, "id")
	if !ok {
		return NotFound(c)
	}

	if err := list.Remove(c.UserContext(), userID, recipeID); err != nil {
		return RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func queryFlag(c *fiber.Ctx, key string) bool {
	switch c.Query(key) {
	case "1", "true", "True":
		return true
	}
	return false
}
