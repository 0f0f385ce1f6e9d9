package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/atendimento/internal/apperr"
	"github.com/gestaozabele/atendimento/internal/auth"
	httpmiddleware "github.com/gestaozabele/atendimento/internal/http/middleware"
	"github.com/gestaozabele/atendimento/internal/service"
)

const maxBodyBytes = 1 << 20

// writeServiceError traduz erros de regra de negócio no envelope padrão.
// Falhas não classificadas são registradas e devolvidas como INTERNAL.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	case apperr.KindNotFound:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	case apperr.KindForbidden:
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return
	case apperr.KindConflict:
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrAdminRoleRequired):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, service.ErrFirstAccess):
		WriteError(w, http.StatusUnauthorized, "FIRST_ACCESS", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidRole):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, service.ErrPasswordAlreadySet):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		log.Error().Err(err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("falha ao atender requisição")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

// decodeJSON lê o corpo limitado a 1 MiB. Corpo vazio vira objeto vazio.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
	return false
}

// principal devolve o usuário autenticado ou responde 401.
func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := httpmiddleware.GetPrincipal(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "token ausente", nil)
	}
	return p, ok
}

// pathParam decodifica o parâmetro; IDs de demanda trazem "/" codificada.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(raw)
}

// queryFlag interpreta "true", "1" e "sim" como verdadeiro.
func queryFlag(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "true", "1", "sim":
		return true
	}
	return false
}

// flexString aceita número ou texto no JSON, como a planilha faz com meta.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
