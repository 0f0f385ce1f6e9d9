package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/atendimento/internal/app"
	"github.com/gestaozabele/atendimento/internal/config"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	root := newRootCmd(func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return app.New(ctx, cfg)
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
