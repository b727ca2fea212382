// Package authn implementa el set de estrategias de verificación de
// credenciales y el dispatcher que elige exactamente una por ruta.
package authn

import (
	"context"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
)

// Tag identifica la estrategia de autenticación declarada en una ruta.
// Es un union cerrado: el dispatcher es una función pura de tag a
// estrategia, sin reflection.
type Tag string

const (
	// TagDefault es el chequeo estándar de access token firmado
	// (verify + isLive) para rutas sin tag explícito.
	TagDefault Tag = "default"

	TagPublic   Tag = "public"
	TagPassword Tag = "password"
	TagProfile  Tag = "profile"
	TagUuid     Tag = "uuid"
	TagCode     Tag = "code"
	TagRefresh  Tag = "refresh"
)

// Identity es el resultado de una autenticación exitosa.
// User es nil solo para rutas públicas.
type Identity struct {
	User     *repository.User
	Strategy Tag
	Subject  string // claim subject del token, cuando la estrategia usa uno
}

// Strategy valida una modalidad de login contra el request.
type Strategy interface {
	Tag() Tag
	Authenticate(ctx context.Context, req *Request) (*Identity, error)
}
