package http

import (
	"net/http"

	"github.com/gestaozabele/atendimento/internal/demand"
)

// ListByAssignee lista as demandas atribuídas a um atendente.
func (h *Handler) ListByAssignee(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	demandas, err := h.demands.ListByAssignee(r.Context(), p, r.URL.Query().Get("atendente"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"demandas": demandas})
}

// ChangeStatus move a demanda para "Em andamento" ou conclui.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var payload struct {
		Status          string `json:"status"`
		MedidasAdotadas string `json:"medidasAdotadas"`
		RespostaFinal   string `json:"respostaFinal"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	updated, err := h.demands.ChangeStatus(r.Context(), p, pathParam(r, "id"), demand.StatusChange{
		Status:        payload.Status,
		MeasuresTaken: payload.MedidasAdotadas,
		FinalResponse: payload.RespostaFinal,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Status atualizado",
		"finalizado": updated.Status,
		"demanda":    updated,
	})
}

// RegisterWhatsApp registra atendimento recebido por WhatsApp.
func (h *Handler) RegisterWhatsApp(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var payload struct {
		Assunto   string `json:"assunto"`
		Descricao string `json:"descricao"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	id, err := h.demands.RegisterWhatsApp(r.Context(), p, payload.Assunto, payload.Descricao)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"message": "Registro WhatsApp salvo", "id": id})
}

// SigaQueue lista os registros pendentes no SIGA.
func (h *Handler) SigaQueue(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	registros, err := h.demands.SigaQueue(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"registros": registros})
}

// CompleteSigaItem marca o registro como lançado no SIGA.
func (h *Handler) CompleteSigaItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.demands.CompleteSigaItem(r.Context(), p, pathParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Registro finalizado com sucesso")
}
