package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"naskahpad/config"
	"naskahpad/config/database"
	"naskahpad/internal/document/cache"
	"naskahpad/internal/document/repository"
	"naskahpad/internal/document/service"
	"naskahpad/internal/feed"
	"naskahpad/pkg/logger"
	"naskahpad/router"
	"naskahpad/socket"

	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	defer logger.Sync()
	if envErr != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}
	if cfg.JWTSecret == "" {
		logger.Sugar.Warn("API_JWT_SECRET is not set; every API request will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.Connect(cfg)
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Sugar.Fatalf("Failed to migrate schema: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		logger.Sugar.Warnf("Redis unavailable, document cache disabled: %v", err)
	}

	repo := repository.NewDocumentRepository(db)
	var docCache service.Cache
	if redisClient != nil {
		defer redisClient.Close()
		docCache = cache.NewDocumentCache(redisClient, cfg.CacheTTL)
	}
	docService := service.NewDocumentService(repo, docCache)

	hub := socket.NewHub(docService)
	go hub.Run(ctx)

	listener, err := feed.Listen(cfg.DatabaseURL)
	if err != nil {
		logger.Sugar.Fatalf("Failed to listen for document updates: %v", err)
	}
	defer listener.Close()
	go feed.New(repo, docService, hub).Run(ctx, listener.Notify, listener.Ping)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.Setup(cfg, docService, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Sugar.Infof("Document store listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Sugar.Fatalf("Server error: %v", err)
	}
}
