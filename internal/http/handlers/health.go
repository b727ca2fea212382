package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
)

// Pinger es cualquier dependencia que sepa reportar su salud.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler expone liveness y readiness.
type HealthHandler struct {
	// Checks son las dependencias a sondear en readiness, por nombre.
	Checks map[string]Pinger
}

// Healthz responde 200 siempre que el proceso esté vivo.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz sondea cada dependencia con un timeout corto. Cualquier fallo
// baja el readiness a 503.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	out := make(map[string]string, len(h.Checks))
	for name, p := range h.Checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			logger.From(r.Context()).Warn("readiness check failed",
				logger.Component(name),
				logger.Err(err),
			)
			out[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		out[name] = "up"
	}

	writeJSON(w, status, out)
}
