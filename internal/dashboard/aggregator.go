// Package dashboard calcula os cartões de carga de trabalho do painel
// administrativo.
package dashboard

import (
	"time"

	"github.com/gestaozabele/atendimento/internal/demand"
	"github.com/gestaozabele/atendimento/internal/profile"
)

// Card resume a carga de um colaborador.
type Card struct {
	Name       string            `json:"nome"`
	Extension  string            `json:"ramal"`
	Percent    float64           `json:"percentual"`
	InProgress int               `json:"emAndamento"`
	NotStarted int               `json:"naoIniciadas"`
	Stale      bool              `json:"atrasada"`
	Activities map[string]string `json:"atividades"`
}

// Options controla o cálculo de atraso.
type Options struct {
	Now        time.Time
	StaleAfter time.Duration
}

type pool struct {
	count  int
	weight float64
	stale  bool
}

func (p *pool) add(weight float64, stale bool) {
	p.count++
	p.weight += weight
	p.stale = p.stale || stale
}

// BuildCards monta um cartão por colaborador ativo, na ordem da planilha.
// O percentual é uma soma de pesos e pode passar de 100.
//
// A fila SIGA é compartilhada: todo colaborador com Registrosiga recebe a
// fila inteira, sem divisão. Colaboradores com Whatsapp somam ainda os
// registros que fizeram e que continuam sem responsável.
func BuildCards(profiles []profile.Profile, demands []demand.Demand, opts Options) []Card {
	var siga pool
	for _, d := range demands {
		if d.InSigaQueue() {
			siga.add(d.SigaMeta, d.IsStale(opts.Now, opts.StaleAfter))
		}
	}

	cards := make([]Card, 0, len(profiles))
	for _, p := range profiles {
		if !p.IsCollaborator() {
			continue
		}

		card := Card{
			Name:       p.Name,
			Extension:  p.Extension,
			Activities: p.Flags(),
		}

		for _, d := range demands {
			if d.Concluded || !d.AssignedToName(p.Name) {
				continue
			}
			card.Percent += d.Meta
			switch d.State() {
			case demand.StateInProgress:
				card.InProgress++
			case demand.StateNotStarted:
				card.NotStarted++
			}
			card.Stale = card.Stale || d.IsStale(opts.Now, opts.StaleAfter)
		}

		if p.Has(profile.ActivitySiga) {
			card.fold(siga)
		}

		if p.Has(profile.ActivityWhatsapp) {
			var intake pool
			for _, d := range demands {
				if d.Unassigned() && !d.Concluded && d.RegisteredBy == p.Name {
					intake.add(d.Meta, d.IsStale(opts.Now, opts.StaleAfter))
				}
			}
			card.fold(intake)
		}

		cards = append(cards, card)
	}
	return cards
}

func (c *Card) fold(p pool) {
	c.NotStarted += p.count
	c.Percent += p.weight
	c.Stale = c.Stale || p.stale
}
