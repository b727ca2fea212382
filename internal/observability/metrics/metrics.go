// Package metrics expone los contadores Prometheus del core de seguridad.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del core. Un *Metrics nil es válido y
// no registra nada (tests que no miden no necesitan un registry).
type Metrics struct {
	registry *prometheus.Registry

	logins      *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	permChecks  *prometheus.CounterVec
}

// New crea y registra los contadores en un registry propio.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeep_logins_total",
		Help: "Logins por resultado",
	}, []string{"result"}) // result: ok|not_found|no_password|wrong_credential|disabled|rate_limited|error

	m.refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeep_refreshes_total",
		Help: "Rotaciones de refresh token por resultado",
	}, []string{"result"}) // result: ok|unauthorized|error

	m.rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeep_rate_limited_total",
		Help: "Requests rechazadas por rate limit, por limiter",
	}, []string{"limiter"}) // limiter: login_ip|login_user|access_ip

	m.permChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeep_permission_checks_total",
		Help: "Chequeos de permiso por resultado",
	}, []string{"result"}) // result: allow|deny|error

	m.registry.MustRegister(m.logins, m.refreshes, m.rateLimited, m.permChecks)
	return m
}

// Handler retorna el handler de /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncLogin(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncRefresh(result string) {
	if m != nil {
		m.refreshes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncRateLimited(limiter string) {
	if m != nil {
		m.rateLimited.WithLabelValues(limiter).Inc()
	}
}

func (m *Metrics) IncPermCheck(result string) {
	if m != nil {
		m.permChecks.WithLabelValues(result).Inc()
	}
}
