package http

import (
	"net/http"
)

// DashboardOverview devolve os cartões por colaborador.
func (h *Handler) DashboardOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboard.Overview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, overview)
}

// MonitorRun executa o vigia de atrasos imediatamente.
func (h *Handler) MonitorRun(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "monitoramento desabilitado", nil)
		return
	}
	result, err := h.monitor.RunOnce(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
