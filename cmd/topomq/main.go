package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/topomq/topomq/config"
	"github.com/topomq/topomq/internal/cli"
	"github.com/topomq/topomq/pkg/logger"
)

var (
	VERSION = "dev"
)

func main() {
	// Load configuration from .env file, environment variables, or defaults
	cfg := config.LoadConfig(VERSION)

	// Initialize logger with configured log level
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(cfg)
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
