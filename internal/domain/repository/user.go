package repository

import (
	"context"
	"time"
)

// UserStatus representa el estado de un usuario.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// User representa un usuario del sistema.
// Un usuario INACTIVE falla toda verificación de credenciales y no
// recibe tokens nuevos. Nunca se borra físicamente: el status pasa a
// INACTIVE.
type User struct {
	ID             string
	Email          *string
	Phone          *string
	PasswordHash   *string
	Status         UserStatus
	OrganizationID *string  // cero-o-una organización
	RoleIDs        []string // cero-o-muchos roles

	// Datos de perfil (usados por el login por perfil).
	FirstName   string
	MiddleName  string
	LastName    string
	Suffix      string
	DateOfBirth *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
}

// Active indica si el usuario puede autenticarse.
func (u *User) Active() bool {
	return u != nil && u.Status == UserActive
}

// ProfileQuery agrupa los atributos de identidad para el match por perfil.
type ProfileQuery struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Suffix      string
	DateOfBirth *time.Time
}

// UserRepository define operaciones de lectura/mutación sobre usuarios.
// El alta de usuarios ocurre en un flujo de registro externo al core.
type UserRepository interface {
	// FindByAccount busca por identificador de cuenta probando, en este
	// orden: formato uuid (ID directo), email, teléfono.
	// Retorna ErrNotFound si ninguno matchea.
	FindByAccount(ctx context.Context, account string) (*User, error)

	// FindByID busca un usuario por ID.
	// Retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByProfile retorna TODOS los usuarios cuyo perfil coincide con
	// la query. El caller decide qué hacer con cero o múltiples matches.
	FindByProfile(ctx context.Context, q ProfileQuery) ([]User, error)

	// TouchLastLogin actualiza el timestamp de último login.
	TouchLastLogin(ctx context.Context, userID string) error

	// UpdatePasswordHash reemplaza el hash de password del usuario.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}
