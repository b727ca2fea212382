package authn

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/token"
)

// BearerStrategy es el chequeo por defecto de rutas sin tag: access
// token firmado en Authorization, verificado contra el códec Y contra
// el ledger (la fila tiene que seguir viva).
//
// Acá un token deslistado es solo Unauthorized, sin invalidar nada: el
// par viejo queda deslistado de forma rutinaria tras cada re-login, y
// escalar mataría la sesión nueva.
type BearerStrategy struct {
	Users  repository.UserRepository
	Ledger *ledger.Ledger
	Access *token.Codec
}

func (s *BearerStrategy) Tag() Tag { return TagDefault }

func (s *BearerStrategy) Authenticate(ctx context.Context, req *Request) (*Identity, error) {
	if req.Bearer == "" {
		return nil, fmt.Errorf("%w: missing bearer token", repository.ErrUnauthorized)
	}

	claims, err := s.Access.Verify(req.Bearer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnauthorized, err)
	}

	live, err := s.Ledger.IsLive(ctx, req.Bearer)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, fmt.Errorf("%w: token revoked", repository.ErrUnauthorized)
	}

	user, err := s.Users.FindByID(ctx, claims.UserID)
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: unknown user", repository.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, fmt.Errorf("%w: user inactive", repository.ErrUnauthorized)
	}

	return &Identity{User: user, Strategy: TagDefault, Subject: claims.Subject}, nil
}
