// @title           GoKart Backend API
// @version         1.0.0
// @description     Backend API for kart asset orders: accepts a prompt and model type, prices the order and exposes generated asset references (model LODs, NFT image, background) once ready.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"gokart-backend/docs"
	"gokart-backend/internal/assets"
	"gokart-backend/internal/config"
	"gokart-backend/internal/handlers"
	"gokart-backend/internal/metrics"
	"gokart-backend/internal/middleware"
	"gokart-backend/internal/orders"
	"gokart-backend/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Logger
	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Sentry (optional)
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			logger.Warn("failed to initialize sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Order store
	var orderStore store.Store
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		redisStore, err := store.NewRedis(ctx, client, cfg.OrderTTL)
		if err != nil {
			logger.Fatal("failed to initialize redis store", zap.Error(err))
		}
		orderStore = redisStore
		logger.Info("using redis order store", zap.String("addr", cfg.RedisAddr))
	default:
		orderStore = store.NewMemory()
		logger.Info("using in-memory order store")
	}

	// Asset generators: the queued path simulates pipeline latency, the
	// force-complete path does not. A configured render API replaces both.
	var gen, fastGen assets.Generator
	if cfg.RenderAPIURL != "" {
		remote := assets.NewRemote(cfg.RenderAPIURL, cfg.RenderAPIKey, cfg.RenderMaxRetries)
		gen, fastGen = remote, remote
		logger.Info("using remote render API",
			zap.String("url", cfg.RenderAPIURL),
			zap.Int("max_retries", cfg.RenderMaxRetries))
	} else {
		gen = assets.NewStub(cfg.AssetBaseURL, cfg.GenerationDelay)
		fastGen = assets.NewStub(cfg.AssetBaseURL, 0)
	}

	// Metrics and lifecycle service
	reg := metrics.NewRegistry()
	orderService := orders.New(orderStore, gen, fastGen, logger, reg, cfg.QueueSize)
	orderService.Start(ctx, cfg.Workers)
	defer orderService.Shutdown()

	// Handlers
	ordersHandler := handlers.NewOrdersHandler(orderService)
	statusHandler := handlers.NewStatusHandler(orderService)
	completeHandler := handlers.NewCompleteHandler(orderService)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// CORS: allowlist the storefront origins; permit everything when none
	// are configured.
	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health and metrics (no rate limit)
	router.GET("/", handlers.RootHandler)
	router.GET("/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(reg.Handler()))

	// Order lifecycle
	router.POST("/create-order", middleware.RateLimit(cfg.CreateRatePerSec, cfg.CreateBurst), ordersHandler.CreateOrder)
	router.GET("/status/:order_id", statusHandler.GetStatus)
	router.POST("/complete-order/:order_id", completeHandler.CompleteOrder)
	router.POST("/retry-order/:order_id", completeHandler.RetryOrder)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop accepting requests, then let workers drain
	// the generation queue.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	orderService.Shutdown()
}
