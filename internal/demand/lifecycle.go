package demand

import (
	"strconv"
	"time"

	"github.com/gestaozabele/atendimento/internal/apperr"
	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/util"
)

// Patch lista as colunas alteradas por uma operação.
type Patch map[string]string

// Apply grava o patch sobre values.
func (p Patch) Apply(values map[string]string) {
	for k, v := range p {
		values[k] = v
	}
}

// StatusChange é o pedido de mudança de status.
type StatusChange struct {
	Status        string
	MeasuresTaken string
	FinalResponse string
}

// CanChangeStatus indica se o usuário pode mover a demanda: admin ou o
// responsável atribuído.
func CanChangeStatus(d Demand, actor auth.Principal) bool {
	return actor.IsAdmin() || d.AssignedToName(actor.Name)
}

// Transition valida a mudança de status e devolve as colunas a gravar.
// Demandas concluídas só voltam a andar via Reopen.
func Transition(d Demand, actor auth.Principal, change StatusChange, now time.Time) (Patch, error) {
	status := util.NormalizeText(change.Status)
	if status != StatusInProgress && status != StatusConcluded {
		return nil, apperr.Validation("Status inválido")
	}
	if !CanChangeStatus(d, actor) {
		return nil, apperr.Forbidden("Acesso negado para esta demanda")
	}
	if d.Concluded {
		return nil, apperr.Validation("Demanda já concluída; reabra para alterar o status")
	}

	if status == StatusInProgress {
		return Patch{ColStatus: StatusInProgress}, nil
	}

	measures := util.NormalizeText(change.MeasuresTaken)
	if measures == "" {
		return nil, apperr.Validation("Medidas adotadas são obrigatórias para concluir")
	}
	patch := Patch{
		ColStatus:     util.FormatDate(now),
		ColFinishedBy: actor.Name,
		ColMeasures:   measures,
	}
	if d.ReopenCount >= 1 {
		answer := util.NormalizeText(change.FinalResponse)
		if answer == "" {
			return nil, apperr.Validation("Resposta final é obrigatória para demanda reaberta")
		}
		patch[ColFinalResponse] = answer
	}
	return patch, nil
}

// Reopen devolve uma demanda concluída para o estado não iniciado. Cada
// demanda pode ser reaberta uma única vez.
func Reopen(d Demand, actor auth.Principal, reason string) (Patch, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("Acesso negado")
	}
	reason = util.NormalizeText(reason)
	if reason == "" {
		return nil, apperr.Validation("Motivo de reabertura é obrigatório")
	}
	if d.ReopenCount >= 1 {
		return nil, apperr.Validation("Esta demanda já foi reaberta uma vez. Abra um novo chamado.")
	}
	if !d.Concluded {
		return nil, apperr.Validation("Somente demandas concluídas podem ser reabertas")
	}

	return Patch{
		ColReopenCount:   strconv.Itoa(d.ReopenCount + 1),
		ColReopenReason:  reason,
		ColFinalResponse: "",
		ColStatus:        "",
		ColFinishedBy:    "",
	}, nil
}
