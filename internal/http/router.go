package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/atendimento/internal/config"
	"github.com/gestaozabele/atendimento/internal/dashboard"
	"github.com/gestaozabele/atendimento/internal/demand"
	httpmiddleware "github.com/gestaozabele/atendimento/internal/http/middleware"
	"github.com/gestaozabele/atendimento/internal/monitor"
	"github.com/gestaozabele/atendimento/internal/profile"
	"github.com/gestaozabele/atendimento/internal/service"
)

// Deps reúne os serviços expostos pela API.
type Deps struct {
	Auth      *service.AuthService
	Profiles  *profile.Service
	Demands   *demand.Service
	Dashboard *dashboard.Service
	// Monitor é opcional; sem ele a execução manual responde 503.
	Monitor *monitor.Service
	// Redis é opcional e só entra no /ready quando configurado.
	Redis *redis.Client
}

type Handler struct {
	cfg           *config.Config
	auth          *service.AuthService
	profiles      *profile.Service
	demands       *demand.Service
	dashboard     *dashboard.Service
	monitor       *monitor.Service
	redis         *redis.Client
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	h := &Handler{
		cfg:           cfg,
		auth:          deps.Auth,
		profiles:      deps.Profiles,
		demands:       deps.Demands,
		dashboard:     deps.Dashboard,
		monitor:       deps.Monitor,
		redis:         deps.Redis,
		publicLimiter: httpmiddleware.NewRateLimiter("public", cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter("auth", cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))
			public.Post("/auth/login", h.Login)
			public.Post("/auth/primeiro-acesso", h.FirstAccess)
		})

		api.Group(func(private chi.Router) {
			private.Use(httpmiddleware.Auth(h.auth.JWT(), h.auth.Revocations()))
			private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

			private.Post("/auth/logout", h.Logout)
			private.Get("/profile/me", h.Me)

			private.Route("/demandas", func(d chi.Router) {
				d.Get("/", h.ListByAssignee)
				d.Post("/registro-whatsapp", h.RegisterWhatsApp)
				d.Get("/registros-siga", h.SigaQueue)
				d.Post("/registros-siga/{id}/registrado", h.CompleteSigaItem)
				d.Post("/{id}/status", h.ChangeStatus)
			})

			private.Route("/solicitacoes", func(s chi.Router) {
				s.Get("/", h.ListSolicitacoes)
				s.Group(func(admin chi.Router) {
					admin.Use(httpmiddleware.RequireAdmin)
					admin.Post("/", h.CreateSolicitacao)
					admin.Put("/{id}", h.UpdateSolicitacao)
					admin.Delete("/{id}", h.DeleteSolicitacao)
					admin.Post("/{id}/atribuir", h.AssignSolicitacao)
					admin.Post("/{id}/reabrir", h.ReopenSolicitacao)
				})
			})

			private.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireAdmin)
				admin.Route("/users", func(u chi.Router) {
					u.Get("/", h.ListUsers)
					u.Post("/", h.CreateUser)
					u.Put("/{nome}/atividades", h.ToggleActivity)
					u.Delete("/{nome}", h.DeactivateUser)
				})
				admin.Get("/dashboard/admin", h.DashboardOverview)
				admin.Post("/dashboard/monitor/run", h.MonitorRun)
			})
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida o acesso às abas e ao Redis quando configurado.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, storeErr := h.profiles.List(ctx)

	var redisErr error
	if h.redis != nil {
		redisErr = h.redis.Ping(ctx).Err()
	}

	if storeErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"planilha": errorString(storeErr),
			"redis":    errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
