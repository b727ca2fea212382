package authn

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/rate"
)

// CodeStrategy valida account + código de verificación de un solo uso.
//
// El gate de rate limit (IP primero, después usuario) corre ANTES de
// tocar el store de códigos: una IP o cuenta agotada recibe Forbidden
// sin que el código se consulte siquiera.
type CodeStrategy struct {
	Users     repository.UserRepository
	Codes     repository.OneTimeCodeRepository
	LoginIP   rate.Limiter
	LoginUser rate.Limiter
}

func (s *CodeStrategy) Tag() Tag { return TagCode }

func (s *CodeStrategy) Authenticate(ctx context.Context, req *Request) (*Identity, error) {
	if req.Account == "" || req.Code == "" {
		return nil, fmt.Errorf("%w: missing credentials", repository.ErrUnauthorized)
	}

	if _, err := s.LoginIP.Consume(ctx, req.RemoteIP); err != nil {
		if errors.Is(err, rate.ErrRateExceeded) {
			return nil, fmt.Errorf("%w: too many attempts", repository.ErrForbidden)
		}
		return nil, err
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

	if _, err := s.LoginUser.Consume(ctx, user.ID); err != nil {
		if errors.Is(err, rate.ErrRateExceeded) {
			return nil, fmt.Errorf("%w: too many attempts", repository.ErrForbidden)
		}
		return nil, err
	}

	ok, err := s.Codes.IsValid(ctx, req.Account, req.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: bad code", repository.ErrUnauthorized)
	}
	_ = s.Codes.Consume(ctx, req.Account, req.Code)

	// Login exitoso: limpiar solo el contador del usuario. El de IP se
	// mantiene a propósito (ver DESIGN.md).
	_ = s.LoginUser.Reset(ctx, user.ID)

	return &Identity{User: user, Strategy: TagCode}, nil
}
