package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/storage"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecipeService struct {
	db       *gorm.DB
	images   storage.Store
	lists    *Lists
	pageSize int
}

func NewRecipeService(db *gorm.DB, images storage.Store, lists *Lists, pageSize int) *RecipeService {
	return &RecipeService{db: db, images: images, lists: lists, pageSize: pageSize}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// Create stores a new recipe with its tags and ingredient amounts in one
// transaction. The image is required and uploaded before the transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uint, req *dto.RecipeWriteRequest) (*dto.RecipeResponse, error) {
	if err := validateRecipeWrite(req); err != nil {
		return nil, err
	}
	if req.Image == nil || *req.Image == "" {
		return nil, validation.NewError("image", "this field is required")
	}
	imageURL, err := s.saveImage(ctx, *req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRecipeName(tx, req.Name, 0); err != nil {
			return err
		}
		tags, err := resolveTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, req.Ingredients); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return mapRecipeWriteError(err)
		}
		return writeComponents(tx, &recipe, tags, req.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	metrics.RecordRecipeWrite("create")
	slog.InfoContext(ctx, "recipe created", "recipe_id", recipe.ID, "author_id", authorID)
	return s.Get(ctx, authorID, recipe.ID)
}

// Update replaces name, text, cooking time, tags and ingredients of a recipe
// in one transaction. The image changes only when a new one is supplied.
func (s *RecipeService) Update(ctx context.Context, viewerID, recipeID uint, req *dto.RecipeWriteRequest) (*dto.RecipeResponse, error) {
	if err := validateRecipeWrite(req); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	oldImage := recipe.Image
	newImage := ""
	if req.Image != nil && *req.Image != "" {
		url, err := s.saveImage(ctx, *req.Image)
		if err != nil {
			return nil, err
		}
		newImage = url
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRecipeName(tx, req.Name, recipe.ID); err != nil {
			return err
		}
		tags, err := resolveTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, req.Ingredients); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
		}
		if newImage != "" {
			updates["image"] = newImage
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return mapRecipeWriteError(err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return writeComponents(tx, &recipe, tags, req.Ingredients)
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, newImage)
		}
		return nil, err
	}
	if newImage != "" && oldImage != "" {
		s.discardImage(ctx, oldImage)
	}

	metrics.RecordRecipeWrite("update")
	return s.Get(ctx, viewerID, recipe.ID)
}

// Delete removes the recipe and every row that refers to it.
func (s *RecipeService) Delete(ctx context.Context, recipeID uint) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.FavoriteRecipe{}, &models.ShoppingCart{}, &models.RecipeIngredient{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return err
	}

	if recipe.Image != "" {
		s.discardImage(ctx, recipe.Image)
	}
	metrics.RecordRecipeWrite("delete")
	slog.InfoContext(ctx, "recipe deleted", "recipe_id", recipe.ID, "author_id", recipe.AuthorID)
	return nil
}

// AuthorOf returns the owner of a recipe.
func (s *RecipeService) AuthorOf(ctx context.Context, recipeID uint) (uint, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "author_id").First(&recipe, recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrRecipeNotFound
	}
	return recipe.AuthorID, err
}

// Get renders one recipe for viewerID (0 for anonymous).
func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID uint) (*dto.RecipeResponse, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Scopes(preloadRecipe).First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	out, err := s.render(ctx, viewerID, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *RecipeService) Short(ctx context.Context, recipeID uint) (*dto.RecipeShortResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	short := toRecipeShort(&recipe)
	return &short, nil
}

// List returns one page of recipes, newest first. The favorite and cart
// filters apply only to authenticated viewers.
func (s *RecipeService) List(ctx context.Context, viewerID uint, f dto.RecipeFilter) (*dto.Page[dto.RecipeResponse], error) {
	if f.Limit < 1 {
		f.Limit = s.pageSize
	}
	page, limit := normalizePage(f.Page, f.Limit)

	filter := func(db *gorm.DB) *gorm.DB {
		if f.AuthorID != 0 {
			db = db.Where("recipes.author_id = ?", f.AuthorID)
		}
		if len(f.TagSlugs) > 0 {
			tagged := s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs)
			db = db.Where("recipes.id IN (?)", tagged)
		}
		if viewerID != 0 && f.IsFavorited {
			db = db.Where("recipes.id IN (?)", s.lists.Favorites.TargetsOf(s.db, viewerID))
		}
		if viewerID != 0 && f.IsInShoppingCart {
			db = db.Where("recipes.id IN (?)", s.lists.Cart.TargetsOf(s.db, viewerID))
		}
		return db
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(filter).Count(&count).Error; err != nil {
		return nil, err
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Scopes(filter, Paginate(page, limit), preloadRecipe).
		Order("recipes.pub_date DESC, recipes.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	results, err := s.render(ctx, viewerID, recipes)
	if err != nil {
		return nil, err
	}
	return &dto.Page[dto.RecipeResponse]{Count: count, Page: page, Limit: limit, Results: results}, nil
}

func (s *RecipeService) render(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]dto.RecipeResponse, error) {
	ids := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	var (
		flags viewerFlags
		err   error
	)
	if flags.favorited, err = s.lists.Favorites.Members(ctx, viewerID, ids); err != nil {
		return nil, err
	}
	if flags.inCart, err = s.lists.Cart.Members(ctx, viewerID, ids); err != nil {
		return nil, err
	}
	if flags.subscribed, err = s.lists.Follows.Members(ctx, viewerID, authorIDs); err != nil {
		return nil, err
	}

	out := make([]dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, toRecipeResponse(&recipes[i], flags))
	}
	return out, nil
}

func (s *RecipeService) saveImage(ctx context.Context, dataURI string) (string, error) {
	img, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		return "", validation.NewError("image", err.Error())
	}
	url, err := s.images.Save(ctx, img)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		slog.WarnContext(ctx, "failed to delete recipe image", "url", url, "error", err)
	}
}

// validateRecipeWrite runs the field rules and rejects repeated ingredients.
func validateRecipeWrite(req *dto.RecipeWriteRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	seen := make(map[uint]bool, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if seen[item.ID] {
			return validation.NewError("ingredients", fmt.Sprintf("ingredient %d is listed more than once", item.ID))
		}
		seen[item.ID] = true
	}
	return nil
}

func checkRecipeName(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&models.Recipe{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrRecipeNameTaken
	}
	return nil
}

// resolveTags loads the referenced tags; repeated ids collapse to one link.
func resolveTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", unique).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		found := make(map[uint]bool, len(tags))
		for _, t := range tags {
			found[t.ID] = true
		}
		for _, id := range unique {
			if !found[id] {
				return nil, validation.NewError("tags", fmt.Sprintf("tag %d does not exist", id))
			}
		}
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, items []dto.IngredientAmount) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	var found []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return validation.NewError("ingredients", fmt.Sprintf("ingredient %d does not exist", id))
		}
	}
	return nil
}

// writeComponents links tags and inserts the recipe's own ingredient rows.
func writeComponents(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag, items []dto.IngredientAmount) error {
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("failed to link tags: %w", err)
	}

	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to store ingredients: %w", err)
	}
	return nil
}

func mapRecipeWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrRecipeNameTaken
	}
	return err
}
