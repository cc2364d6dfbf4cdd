// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/auth"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/cache"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/config"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/database"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/handlers"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/middleware"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/puzzles"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/realtime"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/session"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/stats"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/store"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if cfg.JWTPrivateKeyPath != "" && cfg.JWTPublicKeyPath != "" {
		if err := auth.InitFromPath(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath); err != nil {
			logger.Fatalf("failed to load session keys: %v", err)
		}
	} else if err := auth.Init(); err != nil {
		logger.Fatalf("failed to init session keys: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	bus, err := cache.NewBus(cfg.RedisAddr, cfg.RedisDB, logger)
	if err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	defer bus.Close()

	catalog, err := database.LoadCatalog(ctx, pool)
	if err != nil {
		logger.Fatalf("failed to load room catalog: %v", err)
	}
	logger.WithField("rooms", catalog.RoomCount()).Info("room catalog loaded")

	lobbyRepo := database.NewLobbyRepo(pool)
	leaderboardRepo := database.NewLeaderboardRepo(pool)
	sessionStore := store.NewSessionStore(lobbyRepo, bus, logger)

	svc := session.NewService(session.ServiceConfig{
		Store:      sessionStore,
		Catalog:    catalog,
		Registry:   puzzles.NewRegistry(),
		Recorder:   leaderboardRepo,
		Logger:     logger,
		HintWindow: cfg.HintInterval,
		MaxPlayers: cfg.MaxPlayers,
	})

	broker := realtime.NewBroker()
	aggregator := stats.NewAggregator(lobbyRepo, nil, cfg.StatsPollInterval, logger)

	syncer := realtime.NewSyncer(bus.Subscribe(ctx), lobbyRepo, broker, logger)
	syncer.OnChange = func(cache.ChangeEvent) { aggregator.Trigger() }
	go syncer.Run(ctx)
	go aggregator.Run(ctx)
	if err := aggregator.RefreshNow(ctx); err != nil {
		logger.WithError(err).Warn("initial stats refresh failed")
	}

	srv := &handlers.Server{
		Service:     svc,
		Store:       sessionStore,
		Broker:      broker,
		Stats:       aggregator,
		Leaderboard: leaderboardRepo,
		Logger:      logger,
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      middleware.LogMiddleware(logger)(srv.Routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // websockets hold the connection open
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.ListenAddr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		logger.Fatalf("server exited: %v", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}
}
