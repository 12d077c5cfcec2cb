package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"arbdiff/internal/application/usecase/pipeline"
	"arbdiff/internal/infrastructure/config"
	"arbdiff/internal/infrastructure/logger"
	"arbdiff/internal/infrastructure/svc"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.SetLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service context initialization failed")
	}
	defer sc.Close()

	deps, err := sc.BuildPipelineDeps()
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline deps failed")
	}

	log.Info().
		Str("config", *configPath).
		Int("feeds", len(deps.Feeds)).
		Str("threshold", cfg.Diff.Threshold).
		Bool("absolute", cfg.Diff.Absolute).
		Int("interval_sec", cfg.Diff.IntervalSec).
		Msg("arbdiff started")

	if err := pipeline.NewService(deps).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("pipeline exited")
	}
	log.Warn().Msg("exit")
}
