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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/playmatatu/pinball/internal/api"
	"github.com/playmatatu/pinball/internal/api/handlers"
	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/database"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/logger"
	"github.com/playmatatu/pinball/internal/migrations"
	"github.com/playmatatu/pinball/internal/redis"
	"github.com/playmatatu/pinball/internal/store"
	"github.com/playmatatu/pinball/internal/ws"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
		ServiceName: "pinball",
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		log.Info("running migrations on startup")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations", log); err != nil {
			return err
		}
	}
	st := store.New(db)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	// Without Redis the session loop feeds the local hub directly and expiry
	// is tracked in memory.
	var (
		pub    game.Publisher = hub
		expiry game.ExpirySchedule
		frames handlers.FrameCache
	)
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		ttl := time.Duration(cfg.SessionIdleMinutes) * time.Minute
		rp := game.NewRedisPublisher(rdb, cfg.SnapshotEvery, ttl)
		pub, frames = rp, rp
		expiry = game.NewRedisExpiry(rdb)
		hub.StartRelay(ctx, rdb)
	} else {
		log.Warn("REDIS_URL not set, running single-instance")
	}

	manager := game.NewManager(game.OptionsFromConfig(cfg), log, pub, expiry, st)
	manager.OnClose(hub.SessionClosed)
	game.StartExpiryWorker(ctx, manager, time.Duration(cfg.SessionWorkerPollSeconds)*time.Second)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, api.Deps{
		Config:  cfg,
		Store:   st,
		Manager: manager,
		Hub:     hub,
		Frames:  frames,
		Log:     log,
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting pinball server", zap.String("port", port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		manager.Shutdown(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
