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

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/config"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/deck"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/effects"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/spawn"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/repository"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
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

	logger.Info("starting Ecosfera server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deckCfg, err := deck.Load(cfg.Game.DeckPath)
	if err != nil {
		logger.Fatal("failed to load deck", zap.String("path", cfg.Game.DeckPath), zap.Error(err))
	}
	registry := effects.Default()
	spawner, err := spawn.New(deckCfg, registry.Has)
	if err != nil {
		logger.Fatal("invalid deck", zap.Error(err))
	}

	machine := game.NewMachine(spawner,
		game.WithRegistry(registry),
		game.WithLogger(logger),
		game.WithAnimationDelay(cfg.Server.AnimationDelay),
	)

	opts := []game.EngineOption{
		game.WithRecorder(game.NewReplayRecorder(logger, cfg.Game.ReplayDir)),
		game.WithRollbackMax(cfg.Game.RollbackMax),
	}

	// The hub resumes archived games only when there is an archive.
	var archive repository.SnapshotStore
	if cfg.Database.Enabled {
		store, err := repository.NewPostgresStore(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer store.Close()
		archive = store
		opts = append(opts, game.WithStore(store))
	}

	engine := game.NewEngine(logger, machine, opts...)
	hub := server.NewHub(engine, archive, cfg.Server, logger)

	logger.Info("Ecosfera server initialized",
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
		zap.Duration("animation_delay", cfg.Server.AnimationDelay),
		zap.Int("rollback_max", cfg.Game.RollbackMax),
		zap.Bool("database", cfg.Database.Enabled),
	)

	if err := server.StartWebSocketServer(ctx, cfg.Server.WebSocket, hub, logger); err != nil {
		logger.Fatal("WebSocket server error", zap.Error(err))
	}

	for _, id := range engine.Games() {
		if err := engine.EndGame(id); err != nil {
			logger.Warn("failed to end game", zap.String("game_id", id), zap.Error(err))
		}
	}
	logger.Info("Ecosfera server stopped")
}

// initLogger initializes the zap logger based on configuration
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
