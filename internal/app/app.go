// Package app monta as dependências compartilhadas pela API e pela CLI.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/config"
	"github.com/gestaozabele/atendimento/internal/dashboard"
	"github.com/gestaozabele/atendimento/internal/demand"
	"github.com/gestaozabele/atendimento/internal/profile"
	"github.com/gestaozabele/atendimento/internal/rowstore"
	"github.com/gestaozabele/atendimento/internal/service"
	"github.com/gestaozabele/atendimento/internal/util"
)

// App agrupa store e serviços já configurados.
type App struct {
	Store     rowstore.Store
	Redis     *redis.Client
	Profiles  *profile.Service
	Demands   *demand.Service
	Dashboard *dashboard.Service
	Auth      *service.AuthService

	cleanup []func()
}

// New abre Redis (opcional) e o store e instancia os serviços.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	util.Location = cfg.Location

	a := &App{}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis parse: %w", err)
		}
		a.Redis = redis.NewClient(opts)
		a.cleanup = append(a.cleanup, func() { _ = a.Redis.Close() })
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis indisponível; seguindo com cache em memória")
		}
	}

	store, closeStore, err := rowstore.Open(ctx, rowstore.Options{
		Backend: cfg.Store.Backend,
		Sheets: rowstore.SheetsConfig{
			SpreadsheetID:       cfg.Store.SheetID,
			ServiceAccountEmail: cfg.Store.ServiceAccountEmail,
			PrivateKey:          cfg.Store.PrivateKey,
			CredentialsFile:     cfg.Store.CredentialsFile,
		},
		DBDSN:    cfg.Store.DBDSN,
		Redis:    a.Redis,
		CacheTTL: cfg.Store.CacheTTL,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	a.cleanup = append(a.cleanup, closeStore)
	a.Store = store

	schema := rowstore.NewSchema(store)
	a.Profiles = profile.NewService(store, schema)
	a.Demands = demand.NewService(store, schema, a.Profiles, cfg.StaleThreshold)
	a.Dashboard = dashboard.NewService(a.Profiles, a.Demands, cfg.StaleThreshold, cfg.DashboardURL)

	var revocations auth.RevocationList = auth.NoRevocations{}
	if a.Redis != nil {
		revocations = auth.NewRedisRevocations(a.Redis)
	}
	a.Auth = service.NewAuthService(a.Profiles, auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL), revocations)

	return a, nil
}

// EnsureSchema garante os cabeçalhos das duas abas.
func (a *App) EnsureSchema(ctx context.Context) error {
	if err := a.Profiles.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("perfil: %w", err)
	}
	if err := a.Demands.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("demandas: %w", err)
	}
	return nil
}

// Close libera conexões na ordem inversa de abertura.
func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}
