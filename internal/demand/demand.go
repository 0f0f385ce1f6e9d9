// Package demand implementa o registro de demandas: identificadores, ciclo
// de vida e as operações sobre a aba "Registro de Demandas".
package demand

import (
	"strconv"
	"strings"
	"time"

	"github.com/gestaozabele/atendimento/internal/rowstore"
	"github.com/gestaozabele/atendimento/internal/util"
)

// TableName é o nome da aba de demandas.
const TableName = "Registro de Demandas"

const (
	ColID              = "ID"
	ColSubject         = "Assunto"
	ColDescription     = "Descrição"
	ColRegisteredAt    = "Data do Registro"
	ColStatus          = "Finalizado"
	ColAssignee        = "Atribuida para"
	ColRegistrarLegacy = "Registrador por"
	ColRegisteredBy    = "Registrado por"
	ColMeta            = "Meta"
	ColFinishedBy      = "Finalizado por"
	ColSigaMeta        = "Meta registro siga"
	ColCategory        = "Categoria"
	ColMeasures        = "Medidas adotadas"
	ColReopenCount     = "Demanda reaberta qtd"
	ColReopenReason    = "Motivo reabertura"
	ColFinalResponse   = "Resposta final"
	ColOrigin          = "Origem"
)

// Columns é o cabeçalho esperado, na ordem de criação.
var Columns = []string{
	ColID,
	ColSubject,
	ColDescription,
	ColRegisteredAt,
	ColStatus,
	ColAssignee,
	ColRegistrarLegacy,
	ColRegisteredBy,
	ColMeta,
	ColFinishedBy,
	ColSigaMeta,
	ColCategory,
	ColMeasures,
	ColReopenCount,
	ColReopenReason,
	ColFinalResponse,
	ColOrigin,
}

// Valores da coluna Finalizado.
const (
	StatusNotStarted = "Não iniciada"
	StatusInProgress = "Em andamento"
	StatusConcluded  = "Concluído"
)

// Origens gravadas na coluna Origem.
const (
	OriginPanel    = "Painel"
	OriginWhatsapp = "Whatsapp"
)

// DefaultSigaMeta é o peso SIGA quando nenhum valor válido foi informado.
const DefaultSigaMeta = 0.5

// State é o estado derivado do campo Finalizado.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateConcluded
	// StateOther cobre textos livres que não indicam nenhum estado conhecido.
	StateOther
)

// IsConcluded reconhece uma data DD/MM/AAAA ou texto iniciado por "Concluído".
func IsConcluded(status string) bool {
	text := util.NormalizeText(status)
	return util.IsDate(text) || strings.HasPrefix(text, StatusConcluded)
}

// StateOf interpreta o campo Finalizado.
func StateOf(status string) State {
	text := util.NormalizeText(status)
	switch {
	case IsConcluded(text):
		return StateConcluded
	case text == StatusInProgress:
		return StateInProgress
	case text == "" || text == StatusNotStarted:
		return StateNotStarted
	}
	return StateOther
}

// Categorias aceitas.
const (
	CategoryLow    = "Baixo"
	CategoryMedium = "Médio"
	CategoryUrgent = "Urgente"
)

// CategoryFromWeight deriva a categoria a partir da meta.
func CategoryFromWeight(weight float64) string {
	switch {
	case weight >= 5:
		return CategoryUrgent
	case weight >= 3:
		return CategoryMedium
	}
	return CategoryLow
}

// NormalizeCategory aceita variações de caixa e acento; inválido vira "".
func NormalizeCategory(value string) string {
	switch strings.ToLower(util.NormalizeText(value)) {
	case "baixo":
		return CategoryLow
	case "medio", "médio":
		return CategoryMedium
	case "urgente":
		return CategoryUrgent
	}
	return ""
}

// Demand é a visão de uma linha da aba de demandas.
type Demand struct {
	ID           string  `json:"id"`
	Subject      string  `json:"area"`
	Description  string  `json:"descricao"`
	RegisteredAt string  `json:"dataRegistro"`
	Status       string  `json:"finalizado"`
	RegisteredBy string  `json:"registradoPor"`
	FinishedBy   string  `json:"finalizadoPor"`
	AssignedTo   string  `json:"atribuidaPara"`
	Meta         float64 `json:"meta"`
	SigaMeta     float64 `json:"metaSiga"`
	Category     string  `json:"categoria"`
	Measures     string  `json:"medidasAdotadas"`
	ReopenCount  int     `json:"demandaReabertaQtd"`
	ReopenReason string  `json:"motivoReabertura"`
	FinalAnswer  string  `json:"respostaFinal"`
	Origin       string  `json:"origem"`
	Concluded    bool    `json:"concluido"`
	Stale        bool    `json:"atrasada"`
}

// FromRow converte uma linha. "Registrado por" recorre à coluna antiga
// "Registrador por" quando vazia.
func FromRow(row rowstore.Row) Demand {
	registeredBy := util.NormalizeText(row.Get(ColRegisteredBy))
	if registeredBy == "" {
		registeredBy = util.NormalizeText(row.Get(ColRegistrarLegacy))
	}
	reopen, _ := strconv.Atoi(util.NormalizeText(row.Get(ColReopenCount)))
	if reopen < 0 {
		reopen = 0
	}

	return Demand{
		ID:           util.NormalizeText(row.Get(ColID)),
		Subject:      util.NormalizeText(row.Get(ColSubject)),
		Description:  util.NormalizeText(row.Get(ColDescription)),
		RegisteredAt: util.NormalizeText(row.Get(ColRegisteredAt)),
		Status:       util.NormalizeText(row.Get(ColStatus)),
		RegisteredBy: registeredBy,
		FinishedBy:   util.NormalizeText(row.Get(ColFinishedBy)),
		AssignedTo:   util.NormalizeText(row.Get(ColAssignee)),
		Meta:         util.ParseWeight(row.Get(ColMeta)),
		SigaMeta:     util.ParseWeightOr(row.Get(ColSigaMeta), DefaultSigaMeta),
		Category:     NormalizeCategory(row.Get(ColCategory)),
		Measures:     util.NormalizeText(row.Get(ColMeasures)),
		ReopenCount:  reopen,
		ReopenReason: util.NormalizeText(row.Get(ColReopenReason)),
		FinalAnswer:  util.NormalizeText(row.Get(ColFinalResponse)),
		Origin:       util.NormalizeText(row.Get(ColOrigin)),
		Concluded:    IsConcluded(row.Get(ColStatus)),
	}
}

// State devolve o estado atual.
func (d Demand) State() State {
	return StateOf(d.Status)
}

// Unassigned indica demanda sem responsável.
func (d Demand) Unassigned() bool {
	return d.AssignedTo == ""
}

// AssignedToName compara o responsável com o nome informado.
func (d Demand) AssignedToName(name string) bool {
	return d.AssignedTo != "" && d.AssignedTo == util.NormalizeText(name)
}

// InSigaQueue indica item pendente de registro no SIGA: foi registrado por
// alguém, não tem responsável e não está concluído.
func (d Demand) InSigaQueue() bool {
	return d.RegisteredBy != "" && d.Unassigned() && !d.Concluded
}

// IsStale indica demanda aberta registrada há mais que threshold.
func (d Demand) IsStale(now time.Time, threshold time.Duration) bool {
	return !d.Concluded && util.IsStale(d.RegisteredAt, now, threshold)
}
