package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/adapters/credential"
	"github.com/dkeye/whowasi/internal/adapters/database"
	router "github.com/dkeye/whowasi/internal/adapters/http"
	"github.com/dkeye/whowasi/internal/adapters/roomstore"
	"github.com/dkeye/whowasi/internal/app"
	"github.com/dkeye/whowasi/internal/app/orch"
	"github.com/dkeye/whowasi/internal/app/tokens"
	"github.com/dkeye/whowasi/internal/clock"
	"github.com/dkeye/whowasi/internal/config"
	"github.com/dkeye/whowasi/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.Logging)

	rooms, closeStore, err := openRoomStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open room store")
	}
	defer closeStore()

	clk := clock.Real()
	ledger := tokens.NewLedger(cfg.Tokens.TTL, clk)
	go tokens.RunSweeper(ctx, ledger, clk, cfg.Tokens.SweepInterval)

	reg := app.NewRegistry()
	o := &orch.Orchestrator{
		Rooms:       rooms,
		Credentials: credential.NewArgon2(credential.DefaultParams),
		Tokens:      ledger,
		Registry:    reg,
		Policy:      app.SimplePolicy{},
		Clock:       clk,
	}

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("app", cfg.App.Name).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	reg.CloseAll()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		log.Warn().Str("level", cfg.Level).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func openRoomStore(ctx context.Context, cfg config.DatabaseConfig) (core.RoomStore, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Str("module", "roomstore").Msg("using in-memory room store, rooms are lost on restart")
		return roomstore.NewMemory(), func() {}, nil
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store := roomstore.NewGorm(db)
	if err := store.Migrate(ctx); err != nil {
		database.Close(db)
		return nil, nil, err
	}
	return store, func() { database.Close(db) }, nil
}
