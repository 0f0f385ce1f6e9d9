package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/atendimento/internal/demand"
)

// maxLines limita o tamanho de cada alerta.
const maxLines = 15

// Config controla o vigia de demandas atrasadas.
type Config struct {
	Enabled  bool
	Interval time.Duration
	// DashboardURL entra como link no alerta.
	DashboardURL string
}

// DemandSource fornece as demandas com a marcação de atraso calculada.
type DemandSource interface {
	All(ctx context.Context) ([]demand.Demand, error)
}

// Result resume uma execução.
type Result struct {
	Stale    int `json:"atrasadas"`
	Notified int `json:"notificadas"`
}

// Service procura demandas atrasadas periodicamente e avisa o canal
// configurado uma única vez por demanda enquanto ela seguir atrasada.
type Service struct {
	demands  DemandSource
	cfg      Config
	notifier Notifier
	logger   zerolog.Logger

	mu      sync.Mutex
	alerted map[string]struct{}

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func NewService(demands DemandSource, cfg Config, logger zerolog.Logger, notifier Notifier) *Service {
	return &Service{
		demands:  demands,
		cfg:      cfg,
		notifier: notifier,
		logger:   logger,
		alerted:  make(map[string]struct{}),
	}
}

// Start inicia loop periódico. Safe para chamar múltiplas vezes.
func (s *Service) Start(parent context.Context) {
	if !s.cfg.Enabled {
		return
	}
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.cancel = cancel
		s.done = make(chan struct{})
		go s.runLoop(ctx)
	})
}

// Stop encerra o loop e aguarda a execução corrente terminar.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Service) runLoop(ctx context.Context) {
	defer close(s.done)

	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("monitor: loop iniciado")

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("monitor: primeira execução falhou")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("monitor: loop encerrado")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("monitor: execução periódica falhou")
			}
		}
	}
}

// RunOnce verifica as demandas e notifica as que ficaram atrasadas desde a
// última execução. Falhas de envio são registradas e repetidas depois.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	all, err := s.demands.All(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listar demandas: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := make(map[string]struct{})
	var fresh []demand.Demand
	for _, d := range all {
		if !d.Stale || d.ID == "" {
			continue
		}
		current[d.ID] = struct{}{}
		if _, ok := s.alerted[d.ID]; !ok {
			fresh = append(fresh, d)
		}
	}
	for id := range s.alerted {
		if _, ok := current[id]; !ok {
			delete(s.alerted, id)
		}
	}

	res := Result{Stale: len(current)}
	if len(fresh) == 0 {
		return res, nil
	}

	if s.notifier == nil {
		s.logger.Warn().Int("novas", len(fresh)).Msg("monitor: demandas atrasadas sem canal de alerta")
		for _, d := range fresh {
			s.alerted[d.ID] = struct{}{}
		}
		return res, nil
	}

	msg := AlertMessage{
		Title:    fmt.Sprintf("%d demanda(s) atrasada(s)", len(fresh)),
		Severity: "warning",
		Link:     s.cfg.DashboardURL,
	}
	for i, d := range fresh {
		if i == maxLines {
			msg.Lines = append(msg.Lines, fmt.Sprintf("... e mais %d", len(fresh)-maxLines))
			break
		}
		msg.Lines = append(msg.Lines, describe(d))
	}

	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Error().Err(err).Msg("monitor: falha ao enviar alerta")
		return res, nil
	}
	for _, d := range fresh {
		s.alerted[d.ID] = struct{}{}
	}
	res.Notified = len(fresh)
	return res, nil
}

func describe(d demand.Demand) string {
	owner := d.AssignedTo
	if owner == "" {
		owner = "sem responsável"
	}
	return fmt.Sprintf("%s %s (%s) registrada em %s", d.ID, d.Subject, owner, d.RegisteredAt)
}
