// Package rate implementa el contador de puntos por ventana fija que
// protege login y acceso general. Tres instancias independientes con
// presupuestos (points, window) distintos: intentos de login por IP,
// intentos de login por usuario y acceso general por IP.
package rate

import (
	"context"
	"errors"
	"time"
)

// ErrRateExceeded indica que el presupuesto de la key ya está agotado
// dentro de la ventana vigente.
var ErrRateExceeded = errors.New("rate limit exceeded")

// Result contiene el resultado de consumir un punto.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter define el contrato del rate limiter.
//
// Consume es la única primitiva mutante y es atómica: chequear el
// restante y decrementar ocurre bajo el mismo lock, nunca como un par
// read-then-write separado por I/O.
type Limiter interface {
	// Allow indica, sin consumir, si la key todavía tiene presupuesto.
	Allow(ctx context.Context, key string) (bool, error)

	// Consume gasta un punto de la key. Falla con ErrRateExceeded si el
	// presupuesto ya estaba agotado; el Result acompaña RetryAfter.
	Consume(ctx context.Context, key string) (Result, error)

	// Reset limpia el contador de la key (ej: login exitoso limpia el
	// historial de intentos fallidos del usuario).
	Reset(ctx context.Context, key string) error
}
