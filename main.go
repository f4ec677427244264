package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fotowand/backend/internal/config"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	// .env는 선택 사항
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:   "fotowand",
		Usage:  "Library backend API server",
		Action: func(ctx context.Context, _ *cli.Command) error { return serve(ctx, cfg, logger) },
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: func(ctx context.Context, _ *cli.Command) error { return serve(ctx, cfg, logger) },
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: func(ctx context.Context, _ *cli.Command) error { return migrate(ctx, cfg, logger) },
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Error("application error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level
	return zapCfg.Build()
}
