package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"gorm.io/gorm"
)

func recipeExists(db *gorm.DB, id uint) (bool, error) {
	return exists(db, &models.Recipe{}, id)
}

func userExists(db *gorm.DB, id uint) (bool, error) {
	return exists(db, &models.User{}, id)
}

// NewFavorites returns the user → favorite recipes list.
func NewFavorites(db *gorm.DB) *ToggleList[models.FavoriteRecipe] {
	return NewToggleList(db, ListRules[models.FavoriteRecipe]{
		Name:         "favorite",
		TargetColumn: "recipe_id",
		NewRow: func(userID, recipeID uint) *models.FavoriteRecipe {
			return &models.FavoriteRecipe{UserID: userID, RecipeID: recipeID}
		},
		TargetExists:      recipeExists,
		ErrTargetMissing:  ErrRecipeNotFound,
		ErrAlreadyPresent: ErrAlreadyFavorited,
		ErrNotPresent:     ErrNotFavorited,
	})
}

// NewShoppingCart returns the user → recipes-to-cook list.
func NewShoppingCart(db *gorm.DB) *ToggleList[models.ShoppingCart] {
	return NewToggleList(db, ListRules[models.ShoppingCart]{
		Name:         "shopping_cart",
		TargetColumn: "recipe_id",
		NewRow: func(userID, recipeID uint) *models.ShoppingCart {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
		TargetExists:      recipeExists,
		ErrTargetMissing:  ErrRecipeNotFound,
		ErrAlreadyPresent: ErrAlreadyInCart,
		ErrNotPresent:     ErrNotInCart,
	})
}

// NewFollows returns the user → followed authors list. Following yourself
// is rejected before the duplicate check.
func NewFollows(db *gorm.DB) *ToggleList[models.Subscribe] {
	return NewToggleList(db, ListRules[models.Subscribe]{
		Name:         "subscription",
		TargetColumn: "author_id",
		NewRow: func(userID, authorID uint) *models.Subscribe {
			return &models.Subscribe{UserID: userID, AuthorID: authorID}
		},
		TargetExists: userExists,
		Check: func(userID, authorID uint) error {
			if userID == authorID {
				return ErrSelfSubscription
			}
			return nil
		},
		ErrTargetMissing:  ErrUserNotFound,
		ErrAlreadyPresent: ErrAlreadySubscribed,
		ErrNotPresent:     ErrNotSubscribed,
	})
}

// Lists bundles the three membership lists so services render viewer flags
// from the same instances the handlers mutate.
type Lists struct {
	Favorites *ToggleList[models.FavoriteRecipe]
	Cart      *ToggleList[models.ShoppingCart]
	Follows   *ToggleList[models.Subscribe]
}

func NewLists(db *gorm.DB) *Lists {
	return &Lists{
		Favorites: NewFavorites(db),
		Cart:      NewShoppingCart(db),
		Follows:   NewFollows(db),
	}
}

// RecipeListService exposes a recipe-valued list and renders the added recipe.
type RecipeListService[T any] struct {
	list    *ToggleList[T]
	recipes *RecipeService
}

func NewRecipeListService[T any](list *ToggleList[T], recipes *RecipeService) *RecipeListService[T] {
	return &RecipeListService[T]{list: list, recipes: recipes}
}

func (s *RecipeListService[T]) Add(ctx context.Context, userID, recipeID uint) (*dto.RecipeShortResponse, error) {
	if err := s.list.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return s.recipes.Short(ctx, recipeID)
}

func (s *RecipeListService[T]) Remove(ctx context.Context, userID, recipeID uint) error {
	return s.list.Remove(ctx, userID, recipeID)
}
