package authn

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/google/uuid"
)

// UuidStrategy trata el valor enviado como user id directo.
// Solo para integraciones confiables (la ruta decide exponerla).
type UuidStrategy struct {
	Users repository.UserRepository
}

func (s *UuidStrategy) Tag() Tag { return TagUuid }

func (s *UuidStrategy) Authenticate(ctx context.Context, req *Request) (*Identity, error) {
	id := req.UserID
	if id == "" {
		id = req.Account
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad user id", repository.ErrUnauthorized)
	}

	user, err := s.Users.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: unknown user", repository.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, fmt.Errorf("%w: user inactive", repository.ErrUnauthorized)
	}

	return &Identity{User: user, Strategy: TagUuid}, nil
}
