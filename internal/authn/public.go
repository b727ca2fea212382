package authn

import "context"

// PublicStrategy siempre autentica, sin usuario.
// Para rutas sin requerimiento de autenticación.
type PublicStrategy struct{}

func (PublicStrategy) Tag() Tag { return TagPublic }

func (PublicStrategy) Authenticate(context.Context, *Request) (*Identity, error) {
	return &Identity{Strategy: TagPublic}, nil
}
