package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gltch/gltch-backend/internal/auth"
	"github.com/gltch/gltch-backend/internal/bluesky"
	"github.com/gltch/gltch-backend/internal/cache"
	"github.com/gltch/gltch-backend/internal/config"
	"github.com/gltch/gltch-backend/internal/database"
	"github.com/gltch/gltch-backend/internal/feed"
	"github.com/gltch/gltch-backend/internal/handlers"
	"github.com/gltch/gltch-backend/internal/logger"
	"github.com/gltch/gltch-backend/internal/metrics"
	"github.com/gltch/gltch-backend/internal/middleware"
	"github.com/gltch/gltch-backend/internal/notifications"
	"github.com/gltch/gltch-backend/internal/store"
	"github.com/gltch/gltch-backend/internal/votes"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Log.Sync()

	logger.Log.Info("gltch backend starting", zap.String("port", cfg.Port))

	if err := database.Initialize(cfg.DatabaseURL, cfg.LogLevel == "debug"); err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it hashtag lookups hit the database directly
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Log.Warn("redis unavailable, continuing without cache", zap.Error(err))
	} else {
		defer redisClient.Close()
	}

	metrics.Initialize()

	blueskyClient := bluesky.NewClient(cfg.BlueskyService)
	if cfg.BlueskyIdentifier != "" && cfg.BlueskyPassword != "" {
		loginCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := blueskyClient.Login(loginCtx, cfg.BlueskyIdentifier, cfg.BlueskyPassword); err != nil {
			logger.Log.Warn("bluesky login failed, continuing unauthenticated", zap.Error(err))
		} else {
			logger.Log.Info("bluesky session established", zap.String("did", blueskyClient.DID()))
		}
		cancel()
	}

	// Stores
	engagementStore := store.NewEngagementStore(database.DB)
	userRegistry := store.NewAppUserRegistry(database.DB)
	hashtagDirectory := store.NewHashtagDirectory(database.DB, redisClient)
	feedConfigStore := store.NewFeedConfigStore(database.DB)

	// Services
	source := feed.NewSource(blueskyClient, userRegistry, hashtagDirectory)
	scorer := feed.NewScorer(engagementStore, userRegistry)
	feedService := feed.NewService(source, scorer, engagementStore, redisClient)
	voteService := votes.NewService(database.DB, blueskyClient, engagementStore)
	notificationService := notifications.NewService(database.DB)
	authService := auth.NewService([]byte(cfg.JWTSecret))

	// Router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.GinLogger())
	r.Use(middleware.PrometheusMetrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.New(feedService, feedConfigStore, userRegistry, hashtagDirectory, voteService, notificationService, authService)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}

	logger.Log.Info("server stopped")
}
