package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// CORS aplica a política de origens baseada em ALLOW_ORIGINS.
// Aceita:
// - "*" para qualquer origem (apenas desenvolvimento)
// - correspondência exata do Origin (ex.: https://painel.zabele.com.br)
// - wildcard de subdomínio com prefixo *. (ex.: *.zabele.com.br)
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allowExact := make(map[string]struct{}, len(allowedOrigins))
	var allowSuffix []string

	for _, entry := range allowedOrigins {
		e := strings.TrimRight(strings.TrimSpace(entry), "/")
		switch {
		case e == "":
		case e == "*":
			allowAny = true
		case strings.HasPrefix(e, "*."):
			allowSuffix = append(allowSuffix, strings.ToLower(strings.TrimPrefix(e, "*")))
		default:
			allowExact[e] = struct{}{}
		}
	}

	isAllowed := func(origin string) bool {
		if origin == "" {
			return false
		}
		if allowAny {
			return true
		}
		if _, ok := allowExact[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(u.Hostname())
		for _, suf := range allowSuffix {
			// exige subdomínio: a raiz do sufixo não casa
			if strings.HasSuffix(host, suf) && host != strings.TrimPrefix(suf, ".") {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if isAllowed(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
				h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				h.Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
