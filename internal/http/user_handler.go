package http

import (
	"net/http"

	"github.com/gestaozabele/atendimento/internal/profile"
)

type userView struct {
	Nome       string            `json:"nome"`
	Ramal      string            `json:"ramal"`
	Ativo      string            `json:"ativo"`
	Role       string            `json:"role"`
	Atividades map[string]string `json:"atividades"`
}

func newUserView(p profile.Profile) userView {
	ativo := profile.No
	if p.Active {
		ativo = profile.Yes
	}
	return userView{
		Nome:       p.Name,
		Ramal:      p.Extension,
		Ativo:      ativo,
		Role:       p.Role,
		Atividades: p.Flags(),
	}
}

// ListUsers lista os colaboradores ativos.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.ListActiveCollaborators(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	users := make([]userView, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, newUserView(p))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// CreateUser cadastra (ou reativa) um colaborador.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome  string     `json:"nome"`
		Ramal flexString `json:"ramal"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	created, err := h.profiles.Create(r.Context(), profile.NewProfile{
		Name:      payload.Nome,
		Extension: string(payload.Ramal),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, newUserView(created))
}

// ToggleActivity inverte uma atividade do colaborador.
func (h *Handler) ToggleActivity(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Atividade string `json:"atividade"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	enabled, err := h.profiles.ToggleActivity(r.Context(), pathParam(r, "nome"), payload.Atividade)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	valor := profile.No
	if enabled {
		valor = profile.Yes
	}
	WriteJSON(w, http.StatusOK, map[string]string{"atividade": payload.Atividade, "valor": valor})
}

// DeactivateUser desativa o colaborador; a linha permanece na planilha.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Deactivate(r.Context(), pathParam(r, "nome")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Colaborador desativado")
}
