package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/config"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/services"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Setup builds the services over db and registers every route.
func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, images storage.Store) {
	lists := services.NewLists(db)
	recipeService := services.NewRecipeService(db, images, lists, cfg.PageSize)

	authHandler := handlers.NewAuthHandler(services.NewAuthService(db, cfg))
	userHandler := handlers.NewUserHandler(services.NewUserService(db, lists, cfg.PageSize))
	catalogHandler := handlers.NewCatalogHandler(services.NewCatalogService(db))
	recipeHandler := handlers.NewRecipeHandler(
		recipeService,
		services.NewRecipeListService[models.FavoriteRecipe](lists.Favorites, recipeService),
		services.NewRecipeListService[models.ShoppingCart](lists.Cart, recipeService),
		services.NewShoppingListService(db),
	)
	healthHandler := handlers.NewHealthHandler(db)

	app.Get("/metrics", metrics.Handler())
	if cfg.ImageStorage != "s3" {
		app.Static(cfg.MediaURL, cfg.MediaDir)
	}

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Token endpoints: stricter limit, 10 req/min per IP
	auth := api.Group("/auth/token")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	protected := middleware.JWTProtected(cfg)
	optional := middleware.JWTOptional(cfg)

	// Users. Static segments are registered before /:id.
	users := api.Group("/users")
	users.Post("/", authHandler.Register)
	users.Get("/", optional, userHandler.List)
	users.Get("/me", protected, userHandler.Me)
	users.Delete("/me", protected, authHandler.DeleteAccount)
	users.Post("/set_password", protected, authHandler.SetPassword)
	users.Get("/subscriptions", protected, userHandler.Subscriptions)
	users.Get("/:id", optional, userHandler.Get)
	users.Post("/:id/subscribe", protected, userHandler.Subscribe)
	users.Delete("/:id/subscribe", protected, userHandler.Unsubscribe)

	// Tags and ingredients: public reads, admin writes.
	adminOnly := middleware.AdminRequired(db, cfg)
	api.Get("/tags", catalogHandler.ListTags)
	api.Get("/tags/:id", catalogHandler.GetTag)
	api.Post("/tags", protected, adminOnly, catalogHandler.CreateTag)
	api.Get("/ingredients", catalogHandler.ListIngredients)
	api.Get("/ingredients/:id", catalogHandler.GetIngredient)
	api.Post("/ingredients", protected, adminOnly, catalogHandler.CreateIngredient)

	// Recipes
	recipes := api.Group("/recipes", optional, middleware.AuthenticatedOrReadOnly())
	recipes.Get("/download_shopping_cart", protected, recipeHandler.DownloadShoppingCart)
	recipes.Get("/", recipeHandler.List)
	recipes.Post("/", recipeHandler.Create)

	owner := middleware.OwnerOrReadOnly("id", recipeService.AuthorOf)
	recipes.Get("/:id", recipeHandler.Get)
	recipes.Patch("/:id", owner, recipeHandler.Update)
	recipes.Delete("/:id", owner, recipeHandler.Delete)

	recipes.Post("/:id/favorite", recipeHandler.AddFavorite)
	recipes.Delete("/:id/favorite", recipeHandler.RemoveFavorite)
	recipes.Post("/:id/shopping_cart", recipeHandler.AddToCart)
	recipes.Delete("/:id/shopping_cart", recipeHandler.RemoveFromCart)
}
