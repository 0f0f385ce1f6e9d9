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

	"github.com/gestaozabele/atendimento/internal/app"
	"github.com/gestaozabele/atendimento/internal/config"
	internalhttp "github.com/gestaozabele/atendimento/internal/http"
	"github.com/gestaozabele/atendimento/internal/monitor"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.EnsureSchema(ctx); err != nil {
		// a planilha pode estar temporariamente fora; as rotas tentam de novo
		log.Warn().Err(err).Msg("não foi possível preparar os cabeçalhos")
	}

	var notifier monitor.Notifier
	if slack := monitor.NewSlackNotifier(cfg.Monitor.SlackWebhookURL); slack != nil {
		notifier = slack
	}
	monitorLogger := log.With().Str("component", "monitor").Logger()
	monitorService := monitor.NewService(application.Demands, monitor.Config{
		Enabled:      cfg.Monitor.Enabled,
		Interval:     cfg.Monitor.Interval,
		DashboardURL: cfg.DashboardURL,
	}, monitorLogger, notifier)
	monitorService.Start(ctx)
	defer monitorService.Stop()

	handler := internalhttp.NewRouter(cfg, internalhttp.Deps{
		Auth:      application.Auth,
		Profiles:  application.Profiles,
		Demands:   application.Demands,
		Dashboard: application.Dashboard,
		Monitor:   monitorService,
		Redis:     application.Redis,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
