package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "painel_http_requests_total",
		Help: "Requisições HTTP atendidas por rota e status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "painel_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Logging escreve logs estruturados por requisição e alimenta as métricas
// HTTP.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		// o usuário só é conhecido depois do middleware de auth
		holder := &principalHolder{}
		r = r.WithContext(withHolder(r.Context(), holder))

		next.ServeHTTP(ww, r)

		dur := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "desconhecida"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(dur.Seconds())

		event := log.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", status).Dur("duration", dur)

		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			event = event.Str("request_id", reqID)
		}

		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			event = event.Str("ip", ip)
		} else {
			event = event.Str("ip", r.RemoteAddr)
		}

		if holder.name != "" {
			event = event.Str("usuario", holder.name)
		}

		if ua := r.Header.Get("User-Agent"); ua != "" {
			event = event.Str("user_agent", ua)
		}

		event.Msg("http_request")
	})
}

type principalHolder struct {
	name string
}

const contextKeyHolder contextKey = "log_holder"

func withHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, contextKeyHolder, h)
}

func holderFrom(ctx context.Context) *principalHolder {
	h, _ := ctx.Value(contextKeyHolder).(*principalHolder)
	return h
}
