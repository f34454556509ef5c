package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/config"
	"github.com/frontierline/frontier-server/internal/game"
	"github.com/frontierline/frontier-server/internal/match"
	"github.com/frontierline/frontier-server/internal/server"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting frontier server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	catalog, err := buildCatalog(cfg.Cards)
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}
	logger.Info("card catalog loaded", zap.Int("templates", catalog.Size()))

	m := match.New("human", "ai", catalog, cards.DefaultRNG(), logger, match.Options{
		SelectionTimeout: cfg.Server.SelectionTimeout,
		AIPacing:         cfg.Server.AIPacing,
		Game: game.Options{
			HandLimit:       cfg.Game.HandLimit,
			CountersPerTurn: cfg.Game.CountersPerTurn,
			OpeningHand:     cfg.Game.OpeningHand,
		},
	})

	decks := server.Decks{Human: cards.DemoDeck(), AI: cards.DemoDeck()}
	srv := server.New(cfg.Server.Address, m, decks, cfg.Server.ReplayDir, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("frontier server stopped")
}

func buildCatalog(cfg config.CardsConfig) (*cards.Catalog, error) {
	if cfg.CatalogPath == "" {
		return cards.DemoCatalog(), nil
	}
	loader := cards.NewLoader()
	return loader.Load(cfg.CatalogPath)
}

// initLogger initializes the zap logger based on configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
