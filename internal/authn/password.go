package authn

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/security/password"
)

// PasswordStrategy valida account + password.
//
// A este nivel no se distingue "cuenta inexistente" de "password
// incorrecto": ambos son Unauthorized, para no filtrar existencia de
// cuentas. El login explícito (internal/account) sí distingue NotFound.
type PasswordStrategy struct {
	Users repository.UserRepository
}

func (s *PasswordStrategy) Tag() Tag { return TagPassword }

func (s *PasswordStrategy) Authenticate(ctx context.Context, req *Request) (*Identity, error) {
	if req.Account == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: missing credentials", repository.ErrUnauthorized)
	}

	user, err := s.Users.FindByAccount(ctx, req.Account)
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: bad credentials", repository.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, fmt.Errorf("%w: user inactive", repository.ErrUnauthorized)
	}
	if !password.VerifyPtr(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: bad credentials", repository.ErrUnauthorized)
	}

	return &Identity{User: user, Strategy: TagPassword}, nil
}
