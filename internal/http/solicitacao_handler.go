package http

import (
	"net/http"

	"github.com/gestaozabele/atendimento/internal/demand"
)

// ListSolicitacoes aplica os filtros pendentes, minhas, atendente e historico.
func (h *Handler) ListSolicitacoes(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	solicitacoes, err := h.demands.List(r.Context(), p, demand.Filter{
		Pending:  queryFlag(r, "pendentes"),
		Mine:     queryFlag(r, "minhas"),
		Assignee: r.URL.Query().Get("atendente"),
		History:  queryFlag(r, "historico"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"solicitacoes": solicitacoes})
}

type solicitacaoPayload struct {
	Area          string     `json:"area"`
	Descricao     string     `json:"descricao"`
	Meta          flexString `json:"meta"`
	Categoria     string     `json:"categoria"`
	MetaSiga      flexString `json:"metaSiga"`
	AtendenteNome string     `json:"atendenteNome"`
}

// CreateSolicitacao abre uma solicitação e devolve o ID gerado.
func (h *Handler) CreateSolicitacao(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var payload solicitacaoPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	id, err := h.demands.Create(r.Context(), p, demand.CreateInput{
		Subject:     payload.Area,
		Description: payload.Descricao,
		Meta:        string(payload.Meta),
		Category:    payload.Categoria,
		SigaMeta:    string(payload.MetaSiga),
		Assignee:    payload.AtendenteNome,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"message": "Solicitação criada", "id": id})
}

// UpdateSolicitacao altera os campos enviados.
func (h *Handler) UpdateSolicitacao(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var payload solicitacaoPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	err := h.demands.Update(r.Context(), p, pathParam(r, "id"), demand.UpdateInput{
		Subject:     payload.Area,
		Description: payload.Descricao,
		Meta:        string(payload.Meta),
		Category:    payload.Categoria,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Solicitação atualizada")
}

// DeleteSolicitacao remove a linha da solicitação.
func (h *Handler) DeleteSolicitacao(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.demands.Delete(r.Context(), p, pathParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Solicitação removida")
}

// AssignSolicitacao atribui a solicitação a um colaborador ativo.
func (h *Handler) AssignSolicitacao(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var payload struct {
		AtendenteNome string `json:"atendenteNome"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.demands.Assign(r.Context(), p, pathParam(r, "id"), payload.AtendenteNome); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Solicitação atribuída")
}

// ReopenSolicitacao reabre uma demanda concluída uma única vez.
func (h *Handler) ReopenSolicitacao(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var payload struct {
		MotivoReabertura string `json:"motivoReabertura"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.demands.Reopen(r.Context(), p, pathParam(r, "id"), payload.MotivoReabertura); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Demanda reaberta com sucesso")
}
