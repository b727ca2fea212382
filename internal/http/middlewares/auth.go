package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/gatekeep/internal/account"
	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	httperrors "github.com/dropDatabas3/gatekeep/internal/http/errors"
	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
)

// WithAuth autentica el request con la estrategia que corresponda a los
// tags de la ruta (allow-list de orígenes incluido) y guarda la
// identidad resultante en el contexto. Sin tags aplica la estrategia
// default (bearer).
func WithAuth(svc account.Service, cookieName string, tags ...authn.Tag) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := authn.FromHTTP(r, cookieName)

			id, err := svc.Authenticate(r.Context(), req, tags...)
			if err != nil {
				httperrors.WriteError(w, httperrors.FromDomain(err))
				return
			}

			ctx := WithIdentity(r.Context(), id)
			if id.User != nil {
				ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(id.User.ID)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission exige que la identidad del contexto tenga el grant
// (resource, action). Sin grant responde 403; la ausencia es denegación.
// Debe usarse después de WithAuth.
func RequirePermission(svc account.Service, resource string, action repository.Action) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())
			if id == nil || id.User == nil {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			ok, err := svc.Authorize(r.Context(), id, resource, action)
			if err != nil {
				logger.From(r.Context()).Error("permission check failed",
					logger.Resource(resource),
					logger.Action(string(action)),
					logger.Err(err),
				)
				httperrors.WriteError(w, httperrors.FromDomain(err))
				return
			}
			if !ok {
				httperrors.WriteError(w, httperrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
