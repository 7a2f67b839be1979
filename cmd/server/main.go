package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/IT-Nick/exambot/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	application, err := app.NewApp(ctx, configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", configPath).Msg("failed to create app")
	}

	if err := application.ListenAndServe(ctx); err != nil {
		log.Fatal().Err(err).Msg("app stopped with error")
	}
}
