package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gestaozabele/atendimento/internal/demand"
	"github.com/gestaozabele/atendimento/internal/profile"
	"github.com/gestaozabele/atendimento/internal/util"
)

// ProfileSource fornece os perfis cadastrados.
type ProfileSource interface {
	List(ctx context.Context) ([]profile.Profile, error)
}

// DemandSource fornece todas as demandas.
type DemandSource interface {
	All(ctx context.Context) ([]demand.Demand, error)
}

// Overview é a resposta do painel administrativo.
type Overview struct {
	Cards        []Card `json:"cards"`
	DashboardURL string `json:"dashboardUrl"`
}

// Service lê as duas abas em paralelo e monta os cartões.
type Service struct {
	profiles     ProfileSource
	demands      DemandSource
	staleAfter   time.Duration
	dashboardURL string
}

func NewService(profiles ProfileSource, demands DemandSource, staleAfter time.Duration, dashboardURL string) *Service {
	return &Service{profiles: profiles, demands: demands, staleAfter: staleAfter, dashboardURL: dashboardURL}
}

// Overview calcula os cartões no instante atual.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var (
		profiles []profile.Profile
		demands  []demand.Demand
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.profiles.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		demands, err = s.demands.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	cards := BuildCards(profiles, demands, Options{Now: util.Now(), StaleAfter: s.staleAfter})
	return Overview{Cards: cards, DashboardURL: s.dashboardURL}, nil
}
