package main

import (
	"github.com/denisok-ai/LytSlot/internal/handler"
	"github.com/denisok-ai/LytSlot/internal/jobs"
	appmiddleware "github.com/denisok-ai/LytSlot/internal/middleware"
	"github.com/denisok-ai/LytSlot/internal/model"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/pkg/config"
	"github.com/denisok-ai/LytSlot/pkg/database"
	"github.com/denisok-ai/LytSlot/pkg/jwtutil"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/denisok-ai/LytSlot/prometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("lytslot-api")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting API server...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(db,
		&model.Tenant{}, &model.Channel{}, &model.Slot{}, &model.Order{},
		&model.Payment{}, &model.View{}, &model.APIKey{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established")

	st := store.New(db)

	// Process-scoped Redis client for the rate limit counters.
	counterOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("Invalid REDIS_URL", zap.Error(err))
	}
	counterClient := redis.NewClient(counterOpts)

	// Job queue: only when a broker is configured. Handlers treat a nil
	// queue as "worker disabled" and skip dispatch with a log note.
	var queue jobs.Queue
	var brokerClient *redis.Client
	if cfg.Queue.Enabled() {
		brokerOpts, err := redis.ParseURL(cfg.Queue.BrokerURL)
		if err != nil {
			log.Fatal("Invalid QUEUE_BROKER_URL", zap.Error(err))
		}
		brokerClient = redis.NewClient(brokerOpts)
		queue = jobs.NewRedisQueue(brokerClient)
		log.Info("Job queue enabled")
	} else {
		log.Info("Job queue disabled (QUEUE_BROKER_URL not set)")
	}

	// Initialize JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		Secret:        cfg.JWT.Secret,
		ExpireMinutes: cfg.JWT.ExpireMinutes,
	})

	authMW := appmiddleware.NewAuthMiddleware(jwtUtil, cfg.AdminTelegramIDs)

	authHandler := handler.NewAuthHandler(st, jwtUtil, cfg)
	channelHandler := handler.NewChannelHandler(st)
	slotHandler := handler.NewSlotHandler(st)
	orderHandler := handler.NewOrderHandler(st, queue)
	apiKeyHandler := handler.NewAPIKeyHandler(st)
	analyticsHandler := handler.NewAnalyticsHandler(st)
	adminHandler := handler.NewAdminHandler(st)
	webhookHandler := handler.NewWebhookHandler(queue)
	healthHandler := handler.NewHealthHandler(db, brokerClient)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(appmiddleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(appmiddleware.RateLimit(
		appmiddleware.NewRedisCounter(counterClient), cfg.RateLimitPerMinute, jwtUtil))

	// Public routes - no authentication required
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)
	e.GET("/metrics", prometheus.MetricsHandler)
	e.GET("/ws/dashboard/:tenant_id", handler.Dashboard)

	// Authentication routes
	e.POST("/api/auth/callback", authHandler.Callback)
	e.POST("/api/auth/dev-login", authHandler.DevLogin)

	// Tenant-scoped API routes
	api := e.Group("/api")
	api.Use(authMW.Authenticate)
	api.Use(authMW.RequireTenant)

	channels := api.Group("/channels")
	channels.GET("", channelHandler.ListChannels)
	channels.POST("", channelHandler.CreateChannel)
	channels.GET("/:id", channelHandler.GetChannel)
	channels.PATCH("/:id", channelHandler.UpdateChannel)

	slots := api.Group("/slots")
	slots.GET("", slotHandler.ListSlots)
	slots.POST("", slotHandler.CreateSlot)
	slots.GET("/:id", slotHandler.GetSlot)

	orders := api.Group("/orders")
	orders.GET("", orderHandler.ListOrders)
	orders.POST("", orderHandler.CreateOrder)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.PATCH("/:id", orderHandler.UpdateOrder)

	apiKeys := api.Group("/api-keys")
	apiKeys.GET("", apiKeyHandler.ListAPIKeys)
	apiKeys.POST("", apiKeyHandler.CreateAPIKey)
	apiKeys.DELETE("/:id", apiKeyHandler.DeleteAPIKey)

	analytics := api.Group("/analytics")
	analytics.GET("/views", analyticsHandler.GetViews)
	analytics.GET("/summary", analyticsHandler.GetSummary)

	// Admin routes - allow-listed subjects only, unfiltered store
	admin := e.Group("/api/admin")
	admin.Use(authMW.Authenticate)
	admin.Use(authMW.RequireAdmin)
	admin.GET("/channels", adminHandler.ListChannels)
	admin.GET("/revenue", adminHandler.Revenue)

	// Payment provider webhooks - no bearer auth, providers sign payloads
	e.POST("/api/webhooks/stripe", webhookHandler.Stripe)
	e.POST("/api/webhooks/yookassa", webhookHandler.YooKassa)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
