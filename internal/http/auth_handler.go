package http

import (
	"net/http"

	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaozabele/atendimento/internal/http/middleware"
)

type credentialsPayload struct {
	Nome  string `json:"nome"`
	Senha string `json:"senha"`
}

// Login autentica atendente ou administrador pelo nome.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.auth.Login(r.Context(), payload.Nome, payload.Senha)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// FirstAccess define a primeira senha do perfil e já autentica.
func (h *Handler) FirstAccess(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.auth.FirstAccess(r.Context(), payload.Nome, payload.Senha)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// Logout revoga o token atual até sua expiração.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := httpmiddleware.GetClaims(r.Context())
	if err := h.auth.Logout(r.Context(), claims); err != nil {
		// sem redis o token apenas expira sozinho
		log.Warn().Err(err).Msg("logout: falha ao revogar token")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me devolve o perfil do usuário autenticado com as atividades habilitadas.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	prof, err := h.profiles.FindActive(r.Context(), p.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"nome":       prof.Name,
		"ramal":      prof.Extension,
		"role":       prof.Role,
		"atividades": prof.EnabledActivities(),
		"flags":      prof.Flags(),
	})
}
