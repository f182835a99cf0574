package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvfens/ags/config"
	"github.com/dvfens/ags/internal/app/controller"
	"github.com/dvfens/ags/internal/app/repository"
	"github.com/dvfens/ags/internal/app/service"
	"github.com/dvfens/ags/internal/cart"
	"github.com/dvfens/ags/internal/db"
	"github.com/dvfens/ags/internal/middleware"
	"github.com/dvfens/ags/internal/router"
	"github.com/dvfens/ags/internal/scheduler"
	"github.com/dvfens/ags/internal/statestore"
	"github.com/dvfens/ags/internal/storage"
	ws "github.com/dvfens/ags/internal/websocket"
	"github.com/dvfens/ags/pkg/geocode"
	"github.com/dvfens/ags/pkg/logger"
	"github.com/dvfens/ags/pkg/mailer"
	"github.com/dvfens/ags/pkg/pricing"
	"github.com/dvfens/ags/pkg/redis"
)

const (
	loginAttemptsPerWindow  = 10
	signupAttemptsPerWindow = 5
	rateLimitWindow         = 15 * time.Minute
)

func main() {
	// Money fields on models render as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	format := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		format = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      format,
		EnableColor: true,
		Service:     "ags-api",
	})

	logger.Info("Starting AGS Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Migrate also seeds the default occasions and gift wraps.
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Continuing without Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	pricingCfg, err := pricing.ParseConfig(cfg.Pricing.FreeDeliveryThreshold, cfg.Pricing.FlatDeliveryFee, cfg.Pricing.TaxRate)
	if err != nil {
		logger.Fatal("Invalid pricing configuration", err)
	}
	engine := pricing.NewEngine(pricingCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	gdb := db.GetDB()
	userRepo := repository.NewUserRepository(gdb)
	productRepo := repository.NewProductRepository(gdb)
	categoryRepo := repository.NewCategoryRepository(gdb)
	giftRepo := repository.NewGiftRepository(gdb)
	addressRepo := repository.NewAddressRepository(gdb)
	recipientRepo := repository.NewRecipientRepository(gdb)
	orderRepo := repository.NewOrderRepository(gdb)
	sessionStateRepo := repository.NewSessionStateRepository(gdb)

	// Session state: Redis when available, otherwise the database.
	var (
		cartStore     statestore.Store[cart.State]
		locationStore statestore.Store[service.LocationState]
		sweeper       scheduler.StateSweeper
	)
	if redis.Enabled() {
		rc := statestore.NewRedisStore[cart.State](redis.GetClient(), "cart", cfg.Redis.StateTTL)
		rl := statestore.NewRedisStore[service.LocationState](redis.GetClient(), "location", cfg.Redis.StateTTL)
		go rc.Listen(ctx)
		go rl.Listen(ctx)
		cartStore, locationStore = rc, rl
	} else {
		cartStore = statestore.NewDBStore[cart.State](sessionStateRepo, "cart", cfg.Redis.StateTTL)
		locationStore = statestore.NewDBStore[service.LocationState](sessionStateRepo, "location", cfg.Redis.StateTTL)
		sweeper = sessionStateRepo
	}

	geocoder := geocode.NewClient(geocode.Config{
		BaseURL:  cfg.Geocode.BaseURL,
		APIKey:   cfg.Geocode.APIKey,
		Timeout:  cfg.Geocode.Timeout,
		CacheTTL: cfg.Geocode.CacheTTL,
	}, redis.GetClient())

	mail := mailer.New(cfg.Mail)
	if !mail.Enabled() {
		logger.Warn("SMTP host not configured, order confirmation emails disabled")
	}

	// Services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		redis.BlacklistToken,
	)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, giftRepo)
	addressService := service.NewAddressService(addressRepo)
	recipientService := service.NewRecipientService(recipientRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, addressRepo, recipientRepo, giftRepo, userRepo, engine, mail)
	cartService := service.NewCartService(cartStore, catalogService, engine)
	locationService := service.NewLocationService(locationStore, geocoder, addressService)
	checkoutService := service.NewCheckoutService(cartService, locationService, addressService, orderService)

	// Live session updates
	hub := ws.NewHub(controller.SessionSnapshot(cartService, locationService))
	go hub.Run()
	defer ws.Forward(hub, cartStore, "cart", func(st cart.State) (interface{}, error) {
		return cartService.View(st)
	})()
	defer ws.Forward(hub, locationStore, "location", func(st service.LocationState) (interface{}, error) {
		return st, nil
	})()

	// Optional S3 uploads
	var uploadController *controller.UploadController
	s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		logger.Warn("S3 storage unavailable, catalog uploads disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		uploadController = controller.NewUploadController(s3Storage)
	}

	controllers := router.Controllers{
		Auth:      controller.NewAuthController(authService),
		Product:   controller.NewProductController(catalogService),
		Gift:      controller.NewGiftController(catalogService),
		Address:   controller.NewAddressController(addressService),
		Recipient: controller.NewRecipientController(recipientService),
		Order:     controller.NewOrderController(orderService),
		Cart:      controller.NewCartController(cartService),
		Location:  controller.NewLocationController(locationService, geocoder),
		Checkout:  controller.NewCheckoutController(checkoutService),
		Session:   controller.NewSessionController(hub, cfg.CORS.AllowedOrigins),
		Upload:    uploadController,
	}

	var limiters router.Limiters
	if redis.Enabled() {
		limiters.Login = redis.NewRateLimiter(redis.GetClient(), "ratelimit:login", loginAttemptsPerWindow, rateLimitWindow)
		limiters.Signup = redis.NewRateLimiter(redis.GetClient(), "ratelimit:signup", signupAttemptsPerWindow, rateLimitWindow)
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, redis.IsTokenBlacklisted)
	sessionStore := middleware.NewSessionStore(cfg.Session)

	r := router.NewRouter(
		controllers,
		limiters,
		authMiddleware,
		middleware.Session(sessionStore, cfg.Session.CookieName),
		cfg,
	)
	engineHTTP := r.Setup()

	expiry := scheduler.NewOrderExpiryScheduler(orderService, sweeper, cfg.Scheduler.OrderExpirySpec, cfg.Scheduler.OrderPendingTTL)
	if err := expiry.Start(); err != nil {
		logger.Fatal("Failed to start order expiry scheduler", err)
	}
	defer expiry.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engineHTTP,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
