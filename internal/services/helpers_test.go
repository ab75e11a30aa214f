package services

import (
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/database"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/storage"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newRecipeService(t *testing.T, db *gorm.DB) *RecipeService {
	t.Helper()
	return NewRecipeService(db, storage.NewLocalStore(t.TempDir(), "/media"), NewLists(db), 6)
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:    username + "@example.com",
		Username: username,
		Password: "x",
		Role:     models.RoleUser,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func createTag(t *testing.T, db *gorm.DB, slug, color string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: slug, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("create tag %s: %v", slug, err)
	}
	return tag
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
	return ing
}

// createRecipe inserts a recipe directly, bypassing the write path.
func createRecipe(t *testing.T, db *gorm.DB, authorID uint, name string, amounts map[uint]int, tags ...models.Tag) *models.Recipe {
	t.Helper()
	r := &models.Recipe{AuthorID: authorID, Name: name, Image: "/media/x.png", Text: "t", CookingTime: 5}
	if err := db.Omit("Tags", "Ingredients").Create(r).Error; err != nil {
		t.Fatalf("create recipe %s: %v", name, err)
	}
	if len(tags) > 0 {
		if err := db.Model(r).Association("Tags").Append(tags); err != nil {
			t.Fatalf("link tags: %v", err)
		}
	}
	for ingredientID, amount := range amounts {
		row := models.RecipeIngredient{RecipeID: r.ID, IngredientID: ingredientID, Amount: amount}
		if err := db.Omit("Ingredient").Create(&row).Error; err != nil {
			t.Fatalf("create recipe ingredient: %v", err)
		}
	}
	return r
}

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not really a png"))
}

func strPtr(s string) *string { return &s }

func writeRequest(name string, tags []uint, items ...dto.IngredientAmount) *dto.RecipeWriteRequest {
	return &dto.RecipeWriteRequest{
		Ingredients: items,
		Tags:        tags,
		Image:       strPtr(pngDataURI()),
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 10,
	}
}
