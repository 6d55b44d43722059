package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/okrasimirov/rota/internal/config"
	"github.com/okrasimirov/rota/internal/syncserver"
)

func main() {
	startTime := time.Now()
	cfg := config.LoadSyncServer()

	var store syncserver.BlobStore
	var rdb *redis.Client

	if cfg.BlobBackend == "redis" {
		var err error
		rdb, err = syncserver.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("critical: %v", err)
		}
		store = syncserver.NewRedisBlobStore(rdb, cfg.SnapshotTTL)
		log.Info("snapshot store: redis")
	} else {
		store = syncserver.NewMemoryBlobStore()
		log.Warn("snapshot store: memory, snapshots are lost on restart")
	}

	server := syncserver.NewServer(store)
	router := server.NewRouter(syncserver.RouterOptions{
		Redis:           rdb,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("rota sync server running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("stop signal received, shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown error: %v", err)
	}

	log.Info("server stopped gracefully")
}
