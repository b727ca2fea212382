package repository

import (
	"context"
	"time"
)

// OneTimeCodeRepository define el store de códigos de verificación de
// un solo uso (login por código). La implementación por defecto vive
// en internal/otp sobre el cache (memory o redis).
type OneTimeCodeRepository interface {
	// Issue genera y guarda un código para la cuenta, con TTL.
	Issue(ctx context.Context, account string, ttl time.Duration) (string, error)

	// IsValid indica si existe un código vigente y no consumido que
	// coincida con el valor enviado.
	IsValid(ctx context.Context, account, code string) (bool, error)

	// Consume invalida el código tras un uso exitoso.
	Consume(ctx context.Context, account, code string) error
}
