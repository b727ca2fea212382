package middlewares

import (
	"context"

	"github.com/dropDatabas3/gatekeep/internal/authn"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota + 1
	ctxKeyIdentity
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID retorna el request ID del contexto, o "" si no hay.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity inyecta la identidad autenticada en el contexto.
func WithIdentity(ctx context.Context, id *authn.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// GetIdentity retorna la identidad del contexto, o nil si el request no
// pasó por el middleware de autenticación.
func GetIdentity(ctx context.Context) *authn.Identity {
	if v, ok := ctx.Value(ctxKeyIdentity).(*authn.Identity); ok {
		return v
	}
	return nil
}

// GetUserID retorna el ID del usuario autenticado, o "" si no hay.
func GetUserID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil && id.User != nil {
		return id.User.ID
	}
	return ""
}
