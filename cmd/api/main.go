package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/monitor"
	"storefront/internal/notify"
	"storefront/internal/queue"
	"storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/internal/service/auth"
	"storefront/internal/service/basket"
	"storefront/internal/service/checkout"
	"storefront/internal/service/order"
	"storefront/internal/utils"
	"storefront/pkg/lock"
	pkgutils "storefront/pkg/utils"
	"storefront/pkg/log"
	"storefront/pkg/snowflake"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Fatal("Failed to load config")
	}

	logConfig := log.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Filename:   cfg.Log.Filename,
		MaxSize:    cfg.Log.MaxSize,
		MaxAge:     cfg.Log.MaxAge,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   cfg.Log.Compress,
	}
	if err := log.Init(logConfig); err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}

	if err := database.Init(cfg); err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	if err := database.AutoMigrate(database.GetDB()); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	if err := redis.Init(cfg); err != nil {
		log.WithError(err).Fatal("Failed to initialize redis")
	}
	defer redis.Close()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	pkgutils.RegisterCustomValidators()

	metrics := monitor.NewMetricsCollector()

	tracer, err := monitor.NewTracer(&monitor.TracerConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Server.Mode,
		JaegerEndpoint: cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create tracer")
	}
	defer tracer.Shutdown(context.Background())

	router, err := setupRouter(cfg, metrics, tracer)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up router")
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())
	defer metricsCancel()
	go metrics.StartSystemMetricsCollection(metricsCtx)

	server := &http.Server{
		Addr:           cfg.Server.GetAddr(),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"addr": cfg.Server.GetAddr(),
			"mode": cfg.Server.Mode,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithFields(map[string]interface{}{
				"error": err.Error(),
			}).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}

func setupRouter(cfg *config.Config, metrics *monitor.MetricsCollector, tracer *monitor.Tracer) (*gin.Engine, error) {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	router.GET("/health", healthCheck)
	router.GET("/ping", ping)
	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	db := database.GetDB()
	redisClient := redis.GetClient()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	basketRepo := repository.NewBasketRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	jwtManager := utils.NewJWTManager(
		cfg.Security.JWT.Secret,
		cfg.Security.JWT.Issuer,
		cfg.Security.JWT.Expire,
		cfg.Security.JWT.RefreshTTL,
	)

	idGenerator, err := snowflake.NewIDGenerator(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create ID generator: %w", err)
	}

	basketCache, err := basket.NewViewCache(redisClient, cfg.Checkout.BasketCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create basket cache: %w", err)
	}

	// Outbound collaborators share one HTTP client with a bounded timeout
	httpClient := &http.Client{Timeout: cfg.Checkout.NotifyTimeout}
	deliveryClient := notify.NewDeliveryClient(cfg.Checkout.DeliveryOrderProcessorURI, httpClient)
	reserverClient := notify.NewReserverClient(cfg.Checkout.OrderItemsReserverURI, httpClient)
	publisher := queue.NewPublisher(cfg.Checkout.ServiceBusConnectionString, cfg.Checkout.ServiceBusQueueName)

	// Services
	authService := auth.NewAuthService(userRepo, jwtManager, redisClient)
	basketService := basket.NewBasketService(basketRepo, basketCache)
	orderService := order.NewOrderService(orderRepo, basketRepo, idGenerator)
	checkoutService := checkout.NewCheckoutService(
		basketService,
		orderService,
		deliveryClient,
		reserverClient,
		publisher,
		checkoutLockFactory(redisClient),
		metrics,
		tracer,
		cfg.Checkout.NotifyTimeout,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	basketHandler := handler.NewBasketHandler(basketService)
	checkoutHandler := handler.NewCheckoutHandler(basketService, checkoutService, orderService)
	orderHandler := handler.NewOrderHandler(orderService)

	tokenValidator := func(token string) (*middleware.UserInfo, error) {
		claims, err := authService.ValidateToken(context.Background(), token)
		if err != nil {
			return nil, err
		}
		return &middleware.UserInfo{
			ID:       claims.UserID,
			Username: claims.Username,
		}, nil
	}

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		v1.Use(middleware.OptionalAuth(tokenValidator))
		{
			v1.GET("/health", healthCheck)
			v1.GET("/ping", ping)

			authGroup := v1.Group("/auth")
			{
				authGroup.POST("/register", authHandler.Register)
				authGroup.POST("/login", authHandler.Login)
				authGroup.POST("/refresh", authHandler.RefreshToken)
				authGroup.POST("/logout", authHandler.Logout)
			}

			v1.GET("/basket", basketHandler.GetBasket)
			v1.POST("/basket", basketHandler.UpdateBasket)

			checkoutGroup := v1.Group("/checkout")
			if cfg.Security.RateLimit.Enabled {
				checkoutGroup.Use(middleware.RateLimit(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst))
			}
			{
				checkoutGroup.GET("", checkoutHandler.GetCheckout)
				checkoutGroup.POST("", checkoutHandler.PostCheckout)
				checkoutGroup.GET("/success", checkoutHandler.GetSuccess)
			}

			v1.GET("/orders", orderHandler.ListOrders)
			v1.GET("/orders/:order_no", orderHandler.GetOrder)
		}
	}

	return router, nil
}

// checkoutLockFactory guards each basket's commit pipeline with a Redis lock
func checkoutLockFactory(client *goredis.Client) checkout.LockFactory {
	return func(key string) checkout.Locker {
		return lock.NewRedisLock(client, key, uuid.NewString(), 30*time.Second)
	}
}

func healthCheck(c *gin.Context) {
	dbHealth := checkComponent(database.Health)
	redisHealth := checkComponent(redis.Health)

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   "1.0.0",
		"services": map[string]interface{}{
			"database": dbHealth,
			"redis":    redisHealth,
		},
	}

	if !dbHealth["healthy"].(bool) || !redisHealth["healthy"].(bool) {
		health["status"] = "error"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "pong",
		"timestamp": time.Now().Unix(),
	})
}

func checkComponent(health func() error) map[string]interface{} {
	if err := health(); err != nil {
		return map[string]interface{}{
			"healthy": false,
			"error":   err.Error(),
		}
	}
	return map[string]interface{}{
		"healthy": true,
		"status":  "connected",
	}
}
