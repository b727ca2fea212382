package authn

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
)

// ProfileStrategy matchea atributos de identidad (nombres, sufijo,
// fecha de nacimiento) contra los perfiles guardados.
//
// Solo EXACTAMENTE un perfil coincidente autentica: cero y múltiples
// matches fallan igual. La ambigüedad jamás se resuelve eligiendo uno.
type ProfileStrategy struct {
	Users repository.UserRepository
}

func (s *ProfileStrategy) Tag() Tag { return TagProfile }

func (s *ProfileStrategy) Authenticate(ctx context.Context, req *Request) (*Identity, error) {
	q := req.Profile
	if q.FirstName == "" || q.LastName == "" || q.DateOfBirth == nil {
		return nil, fmt.Errorf("%w: incomplete profile", repository.ErrUnauthorized)
	}

	matches, err := s.Users.FindByProfile(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, fmt.Errorf("%w: profile match count %d", repository.ErrUnauthorized, len(matches))
	}

	user := &matches[0]
	if !user.Active() {
		return nil, fmt.Errorf("%w: user inactive", repository.ErrUnauthorized)
	}

	return &Identity{User: user, Strategy: TagProfile}, nil
}
