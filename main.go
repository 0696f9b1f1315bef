package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agriassist/config"
	"agriassist/handlers"
	"agriassist/middleware"
	"agriassist/routes"
	"agriassist/services/generation"
	"agriassist/services/geo"
	"agriassist/services/speech"
	"agriassist/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Redis only backs the geo response cache; the server runs uncached without it.
	var (
		cache        geo.Cache
		redisClients []*redis.Client
	)
	if config.AppConfig.CacheEnabled {
		if err := utils.InitCache(); err != nil {
			logger.Warn("main: geo cache disabled", zap.Error(err))
		} else {
			cache = geo.NewRedisCache(utils.GetCacheClient(), config.AppConfig.CacheTTL)
			redisClients = append(redisClients, utils.GetCacheClient())
		}
	}

	adviceService, err := generation.NewServiceFromConfig(rootCtx, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize advice generation", zap.Error(err))
	}
	defer adviceService.Close()
	utils.SetHealthProvider(adviceService.ProviderName())
	utils.StartHealthMonitor(rootCtx, redisClients, time.Minute)

	// nil stays an untyped interface so the handler can answer 503.
	var transcriber speech.Transcriber
	googleSTT, err := speech.NewGoogleTranscriberFromConfig(rootCtx, logger)
	switch {
	case errors.Is(err, speech.ErrSpeechDisabled):
		logger.Info("main: speech recognition not configured")
	case err != nil:
		logger.Warn("main: speech recognition unavailable", zap.Error(err))
	default:
		defer googleSTT.Close()
		transcriber = googleSTT
	}

	geoClient := geo.NewClientFromConfig(cache, logger)
	handlerBundle := handlers.NewHandlerBundle(geoClient, adviceService, transcriber)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLoggerMiddleware(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.RegisterRoutes(router, handlerBundle, config.AppConfig.CORSAllowedOrigins)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "4000"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s (advice provider: %s)...", srv.Addr, adviceService.ProviderName())
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if client := utils.GetCacheClient(); client != nil {
		_ = client.Close()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
