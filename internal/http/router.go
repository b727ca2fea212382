// Package http arma el router y el servidor de la API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gatekeep/internal/account"
	"github.com/dropDatabas3/gatekeep/internal/authn"
	httperrors "github.com/dropDatabas3/gatekeep/internal/http/errors"
	"github.com/dropDatabas3/gatekeep/internal/http/handlers"
	mw "github.com/dropDatabas3/gatekeep/internal/http/middlewares"
	"github.com/dropDatabas3/gatekeep/internal/observability/metrics"
	"github.com/dropDatabas3/gatekeep/internal/otp"
	"github.com/dropDatabas3/gatekeep/internal/rate"
)

// RouterDeps contiene todo lo que el router necesita para armarse.
type RouterDeps struct {
	Svc        account.Service
	Codes      *otp.Store
	CookieName string

	// AccessLimiter es el límite general por IP. nil lo desactiva.
	AccessLimiter rate.Limiter

	CORSAllowedOrigins []string

	// Origins es el allow-list que aplican los endpoints que no pasan
	// por el dispatcher (login por password, refresh). Normalmente es
	// el dispatcher mismo. nil permite todo.
	Origins handlers.OriginPolicy

	Metrics *metrics.Metrics

	// HealthChecks se sondean en /readyz, por nombre.
	HealthChecks map[string]handlers.Pinger
}

// NewRouter arma el router chi. Cada grupo de rutas declara su
// estrategia de autenticación vía mw.WithAuth y el tag que corresponda;
// las rutas sin grupo son públicas de verdad (health, métricas).
func NewRouter(deps RouterDeps) http.Handler {
	auth := &handlers.AuthHandler{
		Svc:        deps.Svc,
		Codes:      deps.Codes,
		CookieName: deps.CookieName,
		Origins:    deps.Origins,
	}
	authz := &handlers.AuthzHandler{Svc: deps.Svc}
	health := &handlers.HealthHandler{Checks: deps.HealthChecks}

	r := chi.NewRouter()

	// Middlewares globales
	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithCORS(deps.CORSAllowedOrigins))
	r.Use(mw.WithRateLimit(deps.AccessLimiter, deps.Metrics))

	// Infra (sin auth)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/v1/auth", func(r chi.Router) {
		// Login en sus variantes. El rate limit fino de login (por IP y
		// por cuenta) corre dentro de la fachada / estrategias.
		r.Post("/login", auth.Login)
		r.Post("/login/code", auth.LoginCode)
		r.Post("/login/profile", auth.LoginProfile)
		// Login por user id directo, para integraciones confiables.
		r.Post("/login/uuid", auth.LoginUuid)
		r.Post("/code", auth.RequestCode)
		r.Post("/refresh", auth.Refresh)

		// Rutas con bearer (estrategia default).
		r.Group(func(r chi.Router) {
			r.Use(mw.WithAuth(deps.Svc, deps.CookieName, authn.TagDefault))
			r.Post("/logout", auth.Logout)
			r.Get("/me", auth.Me)
		})
	})

	r.Route("/v1/authz", func(r chi.Router) {
		r.Use(mw.WithAuth(deps.Svc, deps.CookieName, authn.TagDefault))
		r.Post("/check", authz.Check)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})

	return r
}
