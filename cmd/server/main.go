package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appalloc "github.com/erp/allocation/internal/application/allocation"
	"github.com/erp/allocation/internal/domain/allocation"
	"github.com/erp/allocation/internal/infrastructure/auth"
	"github.com/erp/allocation/internal/infrastructure/cache"
	"github.com/erp/allocation/internal/infrastructure/commerce"
	"github.com/erp/allocation/internal/infrastructure/config"
	"github.com/erp/allocation/internal/infrastructure/event"
	"github.com/erp/allocation/internal/infrastructure/logger"
	"github.com/erp/allocation/internal/interfaces/http/handler"
	"github.com/erp/allocation/internal/interfaces/http/middleware"
	"github.com/erp/allocation/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting allocation service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Commerce admin API client
	commerceClient, err := commerce.NewClient(&commerce.Config{
		BaseURL:        cfg.Commerce.BaseURL,
		APIToken:       cfg.Commerce.APIToken,
		TimeoutSeconds: cfg.Commerce.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create commerce client", zap.Error(err))
	}

	// Lookup cache: Redis when enabled, in-memory otherwise
	var lookupStore cache.LookupStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisLookupStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		lookupStore = redisStore
		log.Info("Using Redis lookup cache",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		lookupStore = cache.NewInMemoryLookupStore(log)
		log.Info("Using in-memory lookup cache")
	}
	defer func() {
		if err := lookupStore.Close(); err != nil {
			log.Error("Error closing lookup cache", zap.Error(err))
		}
	}()

	var locations allocation.StockLocationDirectory = cache.NewCachedLocationDirectory(
		commerceClient, lookupStore, cfg.Cache.LocationTTL, log)
	var inventory allocation.VariantInventoryQuery = cache.NewCachedInventoryQuery(
		commerceClient, lookupStore, cfg.Cache.InventoryTTL, log)

	// Session store with background eviction of idle sessions
	sessionStore := appalloc.NewSessionStore(cfg.Session.TTL)
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	sessionStore.StartCleanup(cleanupCtx, cfg.Session.CleanupInterval)

	// Event bus with audit logging of allocation outcomes
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	// Application service
	allocationService := appalloc.NewAllocationService(
		locations, inventory, commerceClient, sessionStore, log)
	allocationService.SetEventPublisher(eventBus)

	// Gin engine and middleware
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig),
	)

	// Health endpoints stay outside the authenticated API group
	systemHandler := handler.NewSystemHandler(cfg.App.Name)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Operator API, JWT-protected when a secret is configured
	routerOpts := []router.RouterOption{router.WithAPIVersion("v1")}
	if cfg.JWT.Secret != "" {
		jwtService := auth.NewJWTService(cfg.JWT)
		jwtConfig := middleware.DefaultJWTConfig(jwtService)
		jwtConfig.Logger = log
		routerOpts = append(routerOpts,
			router.WithGroupMiddleware(middleware.JWTAuthMiddlewareWithConfig(jwtConfig)))
	} else {
		log.Warn("JWT secret not configured, operator API is unauthenticated")
	}

	r := router.NewRouter(engine, routerOpts...)
	r.Register(handler.NewAllocationHandler(allocationService))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
