package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"cityshops/internal/caching"
	"cityshops/internal/config"
	"cityshops/internal/handlers"
	"cityshops/internal/jobs/background"
	"cityshops/internal/middleware"
	"cityshops/internal/models"
	"cityshops/internal/repositories"
	"cityshops/internal/services"
	"cityshops/pkg/database"
	"cityshops/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.Options{
		Service: "cityshops",
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheSvc.Close()

	minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		return err
	}
	if err := minioSvc.EnsureBucketExists(ctx); err != nil {
		appLogger.Warn("image bucket unavailable, uploads will fail until it is reachable",
			"bucket", cfg.Minio.Bucket, "error", err)
	}

	var jwks *keyfunc.JWKS
	if cfg.Auth.JWKSURL != "" {
		if jwks, err = services.LoadJWKS(ctx, cfg.Auth.JWKSURL); err != nil {
			return err
		}
		defer jwks.EndBackground()
	}

	// Repositories
	store := repositories.NewStore(pool)
	txm := repositories.NewTxManager(pool)

	// Services
	authSvc := services.NewAuthService(store.Users, cacheSvc, services.AuthOptions{
		Secret:         []byte(cfg.Auth.JWTSecret),
		JWKS:           jwks,
		TokenTTL:       cfg.Auth.TokenTTL(),
		RefreshTTL:     cfg.Auth.RefreshTTL(),
		LoginRateLimit: cfg.Auth.LoginRateLimit,
	})
	userSvc := services.NewUserService(store.Users)
	categorySvc := services.NewCategoryService(store.Categories, cacheSvc)
	shopSvc := services.NewShopService(store.Shops, cacheSvc, minioSvc)
	productSvc := services.NewProductService(store.Products, shopSvc, cacheSvc, minioSvc)
	cartSvc := services.NewCartService(store.Carts, store.Products)
	orderSvc := services.NewOrderService(txm, store, cacheSvc)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userSvc)
	userHandlers := handlers.NewUserHandlers(userSvc, authSvc)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc)
	shopHandlers := handlers.NewShopHandlers(shopSvc)
	productHandlers := handlers.NewProductHandlers(productSvc)
	cartHandlers := handlers.NewCartHandlers(cartSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc, shopSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, minioSvc, version)

	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.NewAuditMiddleware(appLogger).AuditRequest(cfg.App.Env != "production"))

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	versionMiddleware := middleware.NewVersionMiddleware()
	v1 := versionMiddleware.VersionRoute(e, "v1")
	requireAuth := middleware.JWTMiddleware(authSvc.Keyfunc())
	ownersOnly := middleware.RequireRole(models.RoleShopOwner)
	customersOnly := middleware.RequireRole(models.RoleCustomer)

	// Authentication routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)
	auth.GET("/me", authHandlers.Me, requireAuth)

	// Profile routes
	users := v1.Group("/users/me", requireAuth)
	users.PUT("", userHandlers.UpdateProfile)
	users.PUT("/password", userHandlers.ChangePassword)
	users.DELETE("", userHandlers.DeleteAccount)

	// Catalog routes; reads are public
	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.GET("/categories/:id", categoryHandlers.GetCategory)
	v1.POST("/categories", categoryHandlers.CreateCategory, requireAuth, ownersOnly)
	v1.PUT("/categories/:id", categoryHandlers.UpdateCategory, requireAuth, ownersOnly)
	v1.DELETE("/categories/:id", categoryHandlers.DeleteCategory, requireAuth, ownersOnly)

	v1.GET("/shops", shopHandlers.ListShops)
	v1.GET("/shops/mine", shopHandlers.ListMyShops, requireAuth, ownersOnly)
	v1.GET("/shops/:id", shopHandlers.GetShop)
	v1.POST("/shops", shopHandlers.CreateShop, requireAuth, ownersOnly)
	v1.PUT("/shops/:id", shopHandlers.UpdateShop, requireAuth, ownersOnly)
	v1.DELETE("/shops/:id", shopHandlers.DeleteShop, requireAuth, ownersOnly)
	v1.POST("/shops/:id/image", shopHandlers.UploadShopImage, requireAuth, ownersOnly)
	v1.POST("/shops/:id/products", productHandlers.CreateProduct, requireAuth, ownersOnly)

	v1.GET("/products", productHandlers.ListProducts)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.PUT("/products/:id", productHandlers.UpdateProduct, requireAuth, ownersOnly)
	v1.DELETE("/products/:id", productHandlers.DeleteProduct, requireAuth, ownersOnly)
	v1.POST("/products/:id/image", productHandlers.UploadProductImage, requireAuth, ownersOnly)

	// Cart routes
	cart := v1.Group("/cart", requireAuth, customersOnly)
	cart.GET("", cartHandlers.GetCart)
	cart.DELETE("", cartHandlers.ClearCart)
	cart.POST("/items", cartHandlers.AddItem)
	cart.PUT("/items/:id", cartHandlers.UpdateItem)
	cart.DELETE("/items/:id", cartHandlers.RemoveItem)

	// Order routes; visibility is decided per principal by the order service
	orders := v1.Group("/orders", requireAuth)
	orders.POST("", orderHandlers.PlaceOrder, customersOnly)
	orders.GET("", orderHandlers.ListOrders)
	orders.GET("/:id", orderHandlers.GetOrder)
	orders.PUT("/:id", orderHandlers.UpdateOrderStatus, ownersOnly)
	orders.GET("/:id/receipt", orderHandlers.GetReceipt)

	scheduler, err := background.NewJobScheduler(store.Carts, store.Products, background.Options{
		CartTTL:           cfg.Jobs.CartTTL(),
		LowStockThreshold: cfg.Jobs.LowStockThreshold,
	}, appLogger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			appLogger.Error("failed to stop scheduler", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("cityshops server starting", "version", version, "addr", cfg.App.Addr())
		if err := e.Start(cfg.App.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
