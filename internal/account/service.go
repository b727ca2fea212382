// Package account compone ledger, códecs, estrategias, resolver y rate
// limiters en la fachada que toda ruta consume: autenticar el request,
// autorizar la operación, y el ciclo login/logout/refresh.
package account

import (
	"context"

	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/authz"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/observability/metrics"
	"github.com/dropDatabas3/gatekeep/internal/rate"
)

// LoginInput son las credenciales de un login explícito por password.
type LoginInput struct {
	Account  string
	Password string
	RemoteIP string
}

// Service es la fachada de seguridad de cuentas.
type Service interface {
	// Authenticate resuelve la identidad del request según los tags de
	// la ruta (origin allow-list incluido).
	Authenticate(ctx context.Context, req *authn.Request, tags ...authn.Tag) (*authn.Identity, error)

	// Authorize decide si la identidad puede ejecutar (resource, action).
	Authorize(ctx context.Context, id *authn.Identity, resource string, action repository.Action) (bool, error)

	// Login valida account+password y emite un par nuevo, invalidando
	// antes cualquier par previo del usuario.
	Login(ctx context.Context, in LoginInput) (*ledger.Pair, error)

	// StartSession emite un par nuevo para una identidad ya autenticada
	// por una estrategia alternativa (code, profile, uuid).
	StartSession(ctx context.Context, id *authn.Identity) (*ledger.Pair, error)

	// Logout invalida todos los tokens del usuario. Idempotente: un
	// usuario sin tokens activos no es error.
	Logout(ctx context.Context, userID string) error

	// Refresh rota el par a partir del refresh token de la cookie.
	Refresh(ctx context.Context, refreshToken string) (*ledger.Pair, error)
}

// Deps contiene las dependencias de la fachada.
type Deps struct {
	Users      repository.UserRepository
	Ledger     *ledger.Ledger
	Dispatcher *authn.Dispatcher
	Resolver   *authz.Resolver

	// Limiters de login. El de acceso general por IP corre en el rate
	// middleware de la capa HTTP, antes de llegar acá.
	LoginIP   rate.Limiter
	LoginUser rate.Limiter

	Metrics *metrics.Metrics // nil = sin métricas
}

type service struct {
	deps Deps
}

// New crea la fachada.
func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Authenticate(ctx context.Context, req *authn.Request, tags ...authn.Tag) (*authn.Identity, error) {
	return s.deps.Dispatcher.Authenticate(ctx, req, tags...)
}

func (s *service) Authorize(ctx context.Context, id *authn.Identity, resource string, action repository.Action) (bool, error) {
	if id == nil || id.User == nil {
		s.deps.Metrics.IncPermCheck("deny")
		return false, nil
	}
	ok, err := s.deps.Resolver.IsAllowed(ctx, id.User, resource, action)
	switch {
	case err != nil:
		s.deps.Metrics.IncPermCheck("error")
	case ok:
		s.deps.Metrics.IncPermCheck("allow")
	default:
		s.deps.Metrics.IncPermCheck("deny")
	}
	return ok, err
}
