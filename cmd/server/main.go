package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/config"
	"github.com/hspp/hspp-server-go/internal/engine"
	"github.com/hspp/hspp-server-go/internal/server"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
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

	logger.Info("starting hspp server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := loadRegistry(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to load card registry", zap.Error(err))
	}
	logger.Info("card registry loaded",
		zap.String("source", cfg.Cards.Source),
		zap.Int("cards", registry.Len()),
	)

	eng := engine.New(engine.Options{
		Logger:   logger,
		Registry: registry,
		Game:     cfg.Game,
		Replay:   cfg.Replay,
	})
	srv := server.New(eng, cfg.Server.WebSocket, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("hspp server stopped")
}

// loadRegistry builds the card registry from the configured source.
func loadRegistry(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*cards.MemoryRegistry, error) {
	var (
		all []*cards.Card
		err error
	)
	switch cfg.Cards.Source {
	case config.CardSourcePostgres:
		all, err = loadFromPostgres(ctx, cfg.Database, logger)
	default:
		all, err = cards.LoadCSVFile(cfg.Cards.CSVPath, logger)
	}
	if err != nil {
		return nil, err
	}
	return cards.NewMemoryRegistry(all...)
}

func loadFromPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) ([]*cards.Card, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return cards.LoadPostgres(ctx, pool, logger)
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
