package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/validation"
	"gorm.io/gorm"
)

func TestCreateRecipe(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "alice")
	breakfast := createTag(t, db, "breakfast", "#E26C2D")
	lunch := createTag(t, db, "lunch", "#49B64E")
	flour := createIngredient(t, db, "Flour", "g")
	svc := newRecipeService(t, db)

	got, err := svc.Create(ctx, author.ID, writeRequest("Pancakes",
		[]uint{breakfast.ID, lunch.ID, breakfast.ID},
		dto.IngredientAmount{ID: flour.ID, Amount: 2},
	))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got.Name != "Pancakes" || got.CookingTime != 10 || got.Author.ID != author.ID {
		t.Errorf("unexpected recipe %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0].Slug != "breakfast" || got.Tags[1].Slug != "lunch" {
		t.Errorf("tags = %+v, want breakfast and lunch once each", got.Tags)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].Amount != 2 || got.Ingredients[0].MeasurementUnit != "g" {
		t.Errorf("ingredients = %+v", got.Ingredients)
	}
	if got.IsFavorited || got.IsInShoppingCart {
		t.Error("a new recipe must not be favorited or in the cart")
	}
	if !strings.HasPrefix(got.Image, "/media/recipes/") || !strings.HasSuffix(got.Image, ".png") {
		t.Errorf("image = %q", got.Image)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "alice")
	tag := createTag(t, db, "dinner", "#000")
	salt := createIngredient(t, db, "Salt", "g")
	svc := newRecipeService(t, db)

	tests := []struct {
		name  string
		req   func() *dto.RecipeWriteRequest
		field string
	}{
		{"cooking time zero", func() *dto.RecipeWriteRequest {
			r := writeRequest("A", []uint{tag.ID}, dto.IngredientAmount{ID: salt.ID, Amount: 1})
			r.CookingTime = 0
			return r
		}, "cooking_time"},
		{"cooking time too large", func() *dto.RecipeWriteRequest {
			r := writeRequest("A", []uint{tag.ID}, dto.IngredientAmount{ID: salt.ID, Amount: 1})
			r.CookingTime = 32768
			return r
		}, "cooking_time"},
		{"no ingredients", func() *dto.RecipeWriteRequest {
			return writeRequest("A", []uint{tag.ID})
		}, "ingredients"},
		{"zero amount", func() *dto.RecipeWriteRequest {
			return writeRequest("A", []uint{tag.ID}, dto.IngredientAmount{ID: salt.ID, Amount: 0})
		}, "ingredients[0].amount"},
		{"repeated ingredient", func() *dto.RecipeWriteRequest {
			return writeRequest("A", []uint{tag.ID},
				dto.IngredientAmount{ID: salt.ID, Amount: 1},
				dto.IngredientAmount{ID: salt.ID, Amount: 2})
		}, "ingredients"},
		{"unknown ingredient", func() *dto.RecipeWriteRequest {
			return writeRequest("A", []uint{tag.ID}, dto.IngredientAmount{ID: 999, Amount: 1})
		}, "ingredients"},
		{"unknown tag", func() *dto.RecipeWriteRequest {
			return writeRequest("A", []uint{999}, dto.IngredientAmount{ID: salt.ID, Amount: 1})
		}, "tags"},
		{"missing image", func() *dto.RecipeWriteRequest {
			r := writeRequest("A", []uint{tag.ID}, dto.IngredientAmount{ID: salt.ID, Amount: 1})
			r.Image = nil
			return r
		}, "image"},
		{"malformed image", func() *dto.RecipeWriteRequest {
			r := writeRequest("A", []uint{tag.ID}, dto.IngredientAmount{ID: salt.ID, Amount: 1})
			r.Image = strPtr("http://example.com/cat.png")
			return r
		}, "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, author.ID, tt.req())
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want *validation.Error", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want key %q", verr.Fields, tt.field)
			}
		})
	}

	var count int64
	db.Model(&models.Recipe{}).Count(&count)
	if count != 0 {
		t.Fatalf("%d recipes stored by invalid requests", count)
	}
}

func TestCreateRecipeDuplicateName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "alice")
	tag := createTag(t, db, "dinner", "#000")
	salt := createIngredient(t, db, "Salt", "g")
	svc := newRecipeService(t, db)

	req := writeRequest("Soup", []uint{tag.ID}, dto.IngredientAmount{ID: salt.ID, Amount: 1})
	if _, err := svc.Create(ctx, author.ID, req); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, author.ID, writeRequest("Soup", []uint{tag.ID}, dto.IngredientAmount{ID: salt.ID, Amount: 1}))
	if !errors.Is(err, ErrRecipeNameTaken) || !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate Create() error = %v, want ErrRecipeNameTaken", err)
	}
}

func TestUpdateRecipeReplacesComponents(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "alice")
	t1 := createTag(t, db, "breakfast", "#111")
	t2 := createTag(t, db, "dinner", "#222")
	salt := createIngredient(t, db, "Salt", "g")
	milk := createIngredient(t, db, "Milk", "ml")
	svc := newRecipeService(t, db)

	created, err := svc.Create(ctx, author.ID, writeRequest("Porridge", []uint{t1.ID},
		dto.IngredientAmount{ID: salt.ID, Amount: 1}))
	if err != nil {
		t.Fatal(err)
	}

	req := writeRequest("Milk porridge", []uint{t2.ID}, dto.IngredientAmount{ID: milk.ID, Amount: 300})
	req.Image = nil
	req.CookingTime = 15
	updated, err := svc.Update(ctx, author.ID, created.ID, req)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Name != "Milk porridge" || updated.CookingTime != 15 {
		t.Errorf("fields not updated: %+v", updated)
	}
	if updated.Image != created.Image {
		t.Errorf("image changed to %q without a new one being supplied", updated.Image)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].ID != t2.ID {
		t.Errorf("tags = %+v, want only dinner", updated.Tags)
	}
	if len(updated.Ingredients) != 1 || updated.Ingredients[0].ID != milk.ID || updated.Ingredients[0].Amount != 300 {
		t.Errorf("ingredients = %+v", updated.Ingredients)
	}

	var rows int64
	db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("recipe has %d ingredient rows, want 1", rows)
	}
}

func TestUpdateRecipeIsAtomic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "alice")
	tag := createTag(t, db, "breakfast", "#111")
	salt := createIngredient(t, db, "Salt", "g")
	svc := newRecipeService(t, db)

	created, err := svc.Create(ctx, author.ID, writeRequest("Porridge", []uint{tag.ID},
		dto.IngredientAmount{ID: salt.ID, Amount: 1}))
	if err != nil {
		t.Fatal(err)
	}

	req := writeRequest("Renamed", []uint{tag.ID}, dto.IngredientAmount{ID: 999, Amount: 1})
	req.Image = nil
	if _, err := svc.Update(ctx, author.ID, created.ID, req); err == nil {
		t.Fatal("Update() with unknown ingredient succeeded")
	}

	got, err := svc.Get(ctx, 0, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Porridge" || len(got.Ingredients) != 1 || got.Ingredients[0].ID != salt.ID {
		t.Fatalf("failed update left partial changes: %+v", got)
	}
}

func TestUpdateMissingRecipe(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(t, db)
	tag := createTag(t, db, "breakfast", "#111")
	salt := createIngredient(t, db, "Salt", "g")

	_, err := svc.Update(context.Background(), 1, 42, writeRequest("X", []uint{tag.ID}, dto.IngredientAmount{ID: salt.ID, Amount: 1}))
	if !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("Update() error = %v, want ErrRecipeNotFound", err)
	}
}

func TestDeleteRecipeCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "alice")
	fan := createUser(t, db, "bob")
	tag := createTag(t, db, "breakfast", "#111")
	salt := createIngredient(t, db, "Salt", "g")
	recipe := createRecipe(t, db, author.ID, "Toast", map[uint]int{salt.ID: 1}, *tag)
	svc := newRecipeService(t, db)

	if err := svc.lists.Favorites.Add(ctx, fan.ID, recipe.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.lists.Cart.Add(ctx, fan.ID, recipe.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, recipe.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	for _, model := range []interface{}{&models.FavoriteRecipe{}, &models.ShoppingCart{}, &models.RecipeIngredient{}} {
		var count int64
		db.Model(model).Count(&count)
		if count != 0 {
			t.Errorf("%T rows left after delete: %d", model, count)
		}
	}
	var links int64
	db.Table("recipe_tags").Count(&links)
	if links != 0 {
		t.Errorf("recipe_tags rows left: %d", links)
	}
	if err := svc.Delete(ctx, recipe.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("second Delete() error = %v, want ErrRecipeNotFound", err)
	}
}

func TestDeleteRecipeRollsBackOnCascadeFailure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "alice")
	fan := createUser(t, db, "bob")
	salt := createIngredient(t, db, "Salt", "g")
	recipe := createRecipe(t, db, author.ID, "Toast", map[uint]int{salt.ID: 1})
	svc := newRecipeService(t, db)
	if err := svc.lists.Favorites.Add(ctx, fan.ID, recipe.ID); err != nil {
		t.Fatal(err)
	}

	errCart := errors.New("cart delete failed")
	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_cart_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "shopping_carts" {
			tx.AddError(errCart)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, recipe.ID); !errors.Is(err, errCart) {
		t.Fatalf("Delete() error = %v, want %v", err, errCart)
	}

	var recipes, favorites int64
	db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Count(&recipes)
	db.Model(&models.FavoriteRecipe{}).Where("recipe_id = ?", recipe.ID).Count(&favorites)
	if recipes != 1 || favorites != 1 {
		t.Errorf("after failed delete: recipes = %d, favorites = %d; want 1, 1", recipes, favorites)
	}
}

func TestListRecipesFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	breakfast := createTag(t, db, "breakfast", "#111")
	dinner := createTag(t, db, "dinner", "#222")

	r1 := createRecipe(t, db, alice.ID, "Eggs", nil, *breakfast)
	r2 := createRecipe(t, db, alice.ID, "Steak", nil, *dinner)
	r3 := createRecipe(t, db, bob.ID, "Oats", nil, *breakfast, *dinner)
	svc := newRecipeService(t, db)
	if err := svc.lists.Favorites.Add(ctx, bob.ID, r2.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.lists.Cart.Add(ctx, bob.ID, r1.ID); err != nil {
		t.Fatal(err)
	}

	ids := func(p *dto.Page[dto.RecipeResponse]) map[uint]bool {
		out := make(map[uint]bool)
		for _, r := range p.Results {
			out[r.ID] = true
		}
		return out
	}

	tests := []struct {
		name   string
		viewer uint
		filter dto.RecipeFilter
		want   []uint
	}{
		{"all", 0, dto.RecipeFilter{}, []uint{r1.ID, r2.ID, r3.ID}},
		{"by author", 0, dto.RecipeFilter{AuthorID: alice.ID}, []uint{r1.ID, r2.ID}},
		{"by tag", 0, dto.RecipeFilter{TagSlugs: []string{"breakfast"}}, []uint{r1.ID, r3.ID}},
		{"any of tags", 0, dto.RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, []uint{r1.ID, r2.ID, r3.ID}},
		{"favorited", bob.ID, dto.RecipeFilter{IsFavorited: true}, []uint{r2.ID}},
		{"in cart", bob.ID, dto.RecipeFilter{IsInShoppingCart: true}, []uint{r1.ID}},
		{"anonymous ignores favorited", 0, dto.RecipeFilter{IsFavorited: true}, []uint{r1.ID, r2.ID, r3.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(ctx, tt.viewer, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			got := ids(page)
			if int(page.Count) != len(tt.want) || len(got) != len(tt.want) {
				t.Fatalf("count = %d, ids = %v, want %v", page.Count, got, tt.want)
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("missing recipe %d in %v", id, got)
				}
			}
		})
	}

	page, err := svc.List(ctx, bob.ID, dto.RecipeFilter{AuthorID: alice.ID})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range page.Results {
		if r.ID == r2.ID && !r.IsFavorited {
			t.Error("Steak should be favorited for bob")
		}
		if r.ID == r1.ID && !r.IsInShoppingCart {
			t.Error("Eggs should be in bob's cart")
		}
	}
}

func TestListRecipesPagination(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "alice")
	for _, name := range []string{"a", "b", "c"} {
		createRecipe(t, db, author.ID, name, nil)
	}
	svc := newRecipeService(t, db)

	page, err := svc.List(context.Background(), 0, dto.RecipeFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 3 || page.Page != 2 || page.Limit != 2 || len(page.Results) != 1 {
		t.Fatalf("page = %+v", page)
	}
}
