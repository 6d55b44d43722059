package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/okrasimirov/rota/internal/adapters/blob"
	adapterHTTP "github.com/okrasimirov/rota/internal/adapters/handler/http"
	"github.com/okrasimirov/rota/internal/adapters/images"
	"github.com/okrasimirov/rota/internal/adapters/kvstore"
	"github.com/okrasimirov/rota/internal/adapters/repository"
	"github.com/okrasimirov/rota/internal/config"
	"github.com/okrasimirov/rota/internal/core/services"
	"github.com/okrasimirov/rota/internal/core/workers"
)

func newStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		log.Infof("connecting to postgres store...")
		db, err := sqlx.Connect("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)

		store := kvstore.NewPostgresStore(db)
		if err := store.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return kvstore.NewMemoryStore(), nil
	default:
		log.Infof("using file store at %s", cfg.StorePath)
		return kvstore.NewFileStore(cfg.StorePath)
	}
}

func main() {
	startTime := time.Now()
	cfg := config.Load()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("critical: failed to open store: %v", err)
	}

	repo := repository.NewKVRepository(store)

	diskCache, err := images.NewDiskCache(cfg.AssetCacheDir, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("critical: failed to open asset cache: %v", err)
	}
	wgerClient := images.NewWgerClient(cfg.WgerBaseURL, cfg.HTTPTimeout)
	blobClient := blob.NewClient(cfg.SyncServerURL, cfg.HTTPTimeout)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	restoreWorker := workers.NewRestoreWorker(repo, diskCache)
	restoreWorker.Start(workerCtx)

	assetService := services.NewAssetService(wgerClient, diskCache, repo)
	statsService := services.NewStatsService(repo, repo, nil)
	workoutService := services.NewWorkoutService(repo, assetService, restoreWorker)
	rotationService := services.NewRotationService(repo, repo, statsService,
		services.AdvancePolicy(cfg.AdvancePolicy))
	syncService := services.NewSyncService(store, blobClient, repo, assetService, nil)

	// The install date is fixed on first run, before any stats are read.
	if _, err := statsService.EnsureInstallDate(context.Background()); err != nil {
		log.Fatalf("critical: failed to init install date: %v", err)
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		WorkoutHandler: adapterHTTP.NewWorkoutHandler(workoutService, rotationService),
		StatsHandler:   adapterHTTP.NewStatsHandler(statsService),
		SyncHandler:    adapterHTTP.NewSyncHandler(syncService),
		AssetHandler:   adapterHTTP.NewAssetHandler(assetService),
		Store:          store,
		StartTime:      startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("rota engine running on http://localhost:%s", cfg.Port)
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
