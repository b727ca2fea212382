package middlewares

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/dropDatabas3/gatekeep/internal/authn"
	httperrors "github.com/dropDatabas3/gatekeep/internal/http/errors"
	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
	"github.com/dropDatabas3/gatekeep/internal/observability/metrics"
	"github.com/dropDatabas3/gatekeep/internal/rate"
)

// WithRateLimit aplica el límite general de requests por IP de origen.
// Con limiter nil es un no-op (rate.enabled=false en config).
// Los límites específicos de login (por IP y por cuenta) viven dentro de
// la fachada de cuentas, no acá.
func WithRateLimit(limiter rate.Limiter, m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := authn.ClientIP(r)

			res, err := limiter.Consume(r.Context(), key)
			if err != nil {
				if stderrors.Is(err, rate.ErrRateExceeded) {
					m.IncRateLimited("access_ip")
					logger.From(r.Context()).Info("request rate limited",
						logger.ClientIP(key),
					)
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
					w.Header().Set("X-RateLimit-Remaining", "0")
					httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
					return
				}
				// Limiter caído: preferimos dejar pasar a tirar el tráfico.
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}
