package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const (
	authRateLimitRequests = 10
	authRateLimitWindow   = time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry comes up before anything that traces or meters
	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := tel.BridgeLogger(baseLog)
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing {
		if err := telemetry.InstrumentGorm(db.DB, cfg.Database.DBName); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	metrics, err := telemetry.NewShopMetrics(tel.Meter())
	if err != nil {
		log.Warn("Business metrics disabled", zap.Error(err))
	}

	// Category tree cache
	treeCache, err := cache.NewCategoryTreeCacheFactory(cfg.Redis, cfg.Cache, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize category tree cache", zap.Error(err))
	}

	// Token blacklist shares the redis instance when it is reachable
	blacklist := newTokenBlacklist(cfg, log)

	// Object storage for product images
	imageStore, localImages := newObjectStorage(cfg, log)

	// Invoice rendering
	printer := printing.NewChromePrinter(printing.ChromeConfig{
		RemoteURL: cfg.Chrome.RemoteURL,
		NoSandbox: cfg.Chrome.NoSandbox,
		Timeout:   cfg.Chrome.Timeout,
		Logger:    log,
	})
	defer func() {
		if err := printer.Close(); err != nil {
			log.Error("Error closing chrome", zap.Error(err))
		}
	}()
	invoiceFiles, err := printing.NewFileStore(cfg.Invoice.Dir)
	if err != nil {
		log.Fatal("Failed to prepare invoice directory", zap.Error(err))
	}
	invoiceTemplate, err := printing.NewInvoiceTemplate()
	if err != nil {
		log.Fatal("Failed to parse invoice template", zap.Error(err))
	}
	invoiceRenderer := printing.NewInvoiceRenderer(invoiceTemplate, printer.Print, invoiceFiles, cfg.Invoice.ChunkSize, log)

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	brandRepo := persistence.NewGormBrandRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Initialize application services
	categoryService := catalogapp.NewCategoryService(categoryRepo, treeCache)
	brandService := catalogapp.NewBrandService(brandRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, brandRepo, imageStore, catalogapp.DefaultProductServiceConfig())
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, txManager, tradeapp.DefaultPricing())
	orderService.SetMetrics(metrics)
	invoiceService := tradeapp.NewInvoiceService(orderRepo, userRepo, invoiceRenderer, tradeapp.InvoiceServiceConfig{
		Dir:      cfg.Invoice.Dir,
		ShopName: cfg.Invoice.ShopName,
		Currency: cfg.Invoice.Currency,
	})
	invoiceService.SetMetrics(metrics)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request ID, recovery, access log, tracing, metrics,
	// security headers, CORS, body limit, rate limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tel.TracingEnabled(),
	}))
	engine.Use(middleware.SpanEnricher())
	if httpMetrics, err := middleware.HTTPMetrics(tel.Meter()); err != nil {
		log.Warn("HTTP metrics disabled", zap.Error(err))
	} else {
		engine.Use(httpMetrics)
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", handler.InvoicePathHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, "/images/"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}
	guards := handler.RouteGuards{
		Authenticated: middleware.JWTAuth(jwtConfig),
		Optional:      middleware.OptionalJWTAuth(jwtConfig),
		Admin:         middleware.RequireAdmin(),
	}
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		guards.AuthLimit = middleware.AuthRateLimit(middleware.NewRateLimiter(authRateLimitRequests, authRateLimitWindow))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", handler.NewHealthHandler(db).Check)

	// Images on local disk are uploaded and served by this process
	if localImages != nil {
		images := engine.Group("/images")
		images.PUT("/*filepath", guards.Authenticated, guards.Admin, handler.NewImageHandler(localImages, handler.DefaultMaxImageBytes).Upload)
		engine.Static("/images", localImages.Root())
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.AuthRoutes(handler.NewAuthHandler(authService), guards)).
		Register(handler.CategoryRoutes(handler.NewCategoryHandler(categoryService), guards)).
		Register(handler.BrandRoutes(handler.NewBrandHandler(brandService), guards)).
		Register(handler.ProductRoutes(handler.NewProductHandler(productService), guards)).
		Register(handler.OrderRoutes(handler.NewOrderHandler(orderService), handler.NewInvoiceHandler(invoiceService), guards))
	r.Setup()
	for _, route := range r.Routes() {
		log.Debug("Route mounted",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(ctx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newTokenBlacklist prefers redis so revocations survive restarts and are
// shared between instances
func newTokenBlacklist(cfg *config.Config, log *zap.Logger) auth.TokenBlacklist {
	client, err := cache.NewRedisClient(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err == nil {
		log.Info("Using Redis token blacklist")
		return auth.NewRedisTokenBlacklist(client, auth.DefaultBlacklistKeyPrefix)
	}
	if !cfg.Cache.AllowInMemoryFallback {
		log.Fatal("Redis required for token blacklist but unavailable", zap.Error(err))
	}
	log.Warn("Redis unavailable, revoked tokens are kept in memory", zap.Error(err))
	return auth.NewInMemoryTokenBlacklist()
}

// newObjectStorage returns the image store for the configured driver. The
// second result is set only for local disk, whose uploads this process serves.
func newObjectStorage(cfg *config.Config, log *zap.Logger) (catalogapp.ObjectStorage, *storage.LocalObjectStorage) {
	switch cfg.Storage.Driver {
	case "local":
		local, err := storage.NewLocalObjectStorage(cfg.Storage.LocalDir, cfg.Storage.LocalBaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local image storage", zap.Error(err))
		}
		log.Info("Using local image storage", zap.String("dir", local.Root()))
		return local, local
	case "s3":
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize S3 image storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Image bucket is not ready", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		log.Info("Using S3 image storage", zap.String("bucket", s3.Bucket()))
		return s3, nil
	default:
		log.Warn("Image storage disabled", zap.String("driver", cfg.Storage.Driver))
		return nil, nil
	}
}
