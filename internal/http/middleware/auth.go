package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/atendimento/internal/auth"
)

type contextKey string

const (
	ContextKeyPrincipal contextKey = "principal"
	ContextKeyClaims    contextKey = "claims"
)

// Auth valida o JWT de acesso, recusa tokens revogados e injeta o usuário no
// contexto.
func Auth(jwtManager *auth.JWTManager, revocations auth.RevocationList) func(http.Handler) http.Handler {
	if revocations == nil {
		revocations = auth.NoRevocations{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			if claims.ID != "" {
				revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					// redis fora do ar não derruba o painel
					log.Warn().Err(err).Msg("falha ao consultar tokens revogados")
				}
				if revoked {
					writeError(w, http.StatusUnauthorized, "AUTH", "sessão encerrada")
					return
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			ctx = WithPrincipal(ctx, claims.Principal())
			if h := holderFrom(ctx); h != nil {
				h.name = claims.Name
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithPrincipal injeta o usuário autenticado no contexto.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// GetPrincipal recupera o usuário do contexto.
func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	val, ok := ctx.Value(ContextKeyPrincipal).(auth.Principal)
	return val, ok
}

// GetClaims recupera as claims do token validado.
func GetClaims(ctx context.Context) *auth.Claims {
	val, _ := ctx.Value(ContextKeyClaims).(*auth.Claims)
	return val
}

// RequireRole garante que o usuário possua um dos papéis informados.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}
			for _, role := range roles {
				if strings.EqualFold(p.Role, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Acesso negado")
		})
	}
}

// RequireAdmin restringe a rota ao administrador.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(auth.RoleAdmin)(next)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
