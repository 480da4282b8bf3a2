package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/abenezer101/farmrush/internal/config"
	"github.com/abenezer101/farmrush/internal/game"
	"github.com/abenezer101/farmrush/internal/handlers"
	"github.com/abenezer101/farmrush/internal/identity"
	"github.com/abenezer101/farmrush/internal/sse"
	"github.com/abenezer101/farmrush/internal/store"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		configPath = flag.String("config", "./configs/farmrush.yaml", "config file path (missing file falls back to defaults)")
		storePath  = flag.String("store", "", "sqlite database path (overrides config)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	// .env is optional; env vars win over the YAML file either way.
	_ = godotenv.Load()

	cfgPath := *configPath
	if _, err := os.Stat(cfgPath); err != nil {
		logger.Printf("config not found (%s); using defaults", cfgPath)
		cfgPath = ""
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *storePath != "" {
		cfg.Store.Backend = "sqlite"
		cfg.Store.Path = *storePath
	}

	kv, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer kv.Close()

	events := sse.NewBroadcaster()
	registry := identity.NewRegistry(kv)

	ctx := &handlers.Context{
		Timer: game.NewTimer(kv, game.TimerConfig{
			Wait:   cfg.WaitDuration(),
			Active: cfg.ActiveDuration(),
			Ended:  cfg.EndedDuration(),
		}, events),
		Ledger:          game.NewLedger(kv, events),
		Presence:        game.NewPresence(kv, registry, cfg.PresenceTTL()),
		Leaderboard:     game.NewLeaderboard(kv, registry),
		Registry:        registry,
		Events:          events,
		Logger:          logger,
		BaseURL:         cfg.BaseURL,
		DefaultInstance: cfg.DefaultInstance,
		LeaderboardSize: cfg.LeaderboardSize,
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           ctx.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("listening on %s (store=%s)", cfg.Addr, cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}

func openStore(cfg config.Config, logger *log.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		logger.Printf("opening sqlite store at %s", cfg.Store.Path)
		return store.OpenSQLite(cfg.Store.Path)
	default:
		return store.NewMemory(), nil
	}
}
