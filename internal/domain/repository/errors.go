package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized indica credencial o token inválido/ausente/expirado.
	// Reintentable con credenciales nuevas.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indica rate limit agotado o permiso denegado.
	// No reintentable hasta que cambie la ventana o el grant.
	ErrForbidden = errors.New("forbidden")

	// ErrStoreUnavailable indica fallo del backend de persistencia.
	// SIEMPRE se propaga al caller como fallo duro, nunca como deny.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnauthorized verifica si el error es ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden verifica si el error es ErrForbidden.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsStoreUnavailable verifica si el error es ErrStoreUnavailable.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
