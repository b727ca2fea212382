// Package ledger lleva el registro persistente de tokens emitidos.
//
// Toda fila que existe en el ledger está, por construcción, no-revocada:
// revocar es borrar. Un token es válido sii firma+expiración verifican
// Y su fila sigue existiendo (ver internal/authn).
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/token"
)

// DefaultCookieName es el nombre de la cookie de refresh.
const DefaultCookieName = "gk_refresh"

// Pair es un par access/refresh recién emitido, junto con el descriptor
// de cookie para transportar el refresh token.
type Pair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	Cookie           CookieDescriptor
}

// Deps contiene las dependencias del ledger.
type Deps struct {
	Tokens     repository.TokenRepository
	Access     *token.Codec
	Refresh    *token.Codec
	CookieName string // vacío => DefaultCookieName
}

// Ledger emite e invalida pares de tokens contra el TokenRepository.
type Ledger struct {
	deps Deps
}

// New crea un ledger.
func New(deps Deps) *Ledger {
	if deps.CookieName == "" {
		deps.CookieName = DefaultCookieName
	}
	return &Ledger{deps: deps}
}

// IssuePair firma un par access/refresh y persiste ambas filas.
// NO invalida nada por sí mismo: los callers invalidan primero
// (login, refresh y logout llaman InvalidateAll antes).
//
// refreshTTL <= 0 usa el TTL por defecto del códec de refresh.
// Si la segunda escritura falla se borran las filas del usuario para no
// dejar un par a medias; un crash entre ambas escrituras deja al usuario
// con cero tokens válidos (fallo seguro: vuelve a loguearse).
func (l *Ledger) IssuePair(ctx context.Context, userID, subject string, refreshTTL time.Duration) (*Pair, error) {
	access, accessExp, err := l.deps.Access.Sign(userID, subject, 0)
	if err != nil {
		return nil, fmt.Errorf("sign access: %w", err)
	}
	refresh, refreshExp, err := l.deps.Refresh.Sign(userID, subject, refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh: %w", err)
	}

	// Request abortado: no escribir tokens parciales.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := l.deps.Tokens.Create(ctx, repository.Token{
		Token:     access,
		UserID:    userID,
		Kind:      repository.TokenAccess,
		IssuedAt:  now,
		ExpiresAt: accessExp,
	}); err != nil {
		return nil, err
	}
	if err := l.deps.Tokens.Create(ctx, repository.Token{
		Token:     refresh,
		UserID:    userID,
		Kind:      repository.TokenRefresh,
		IssuedAt:  now,
		ExpiresAt: refreshExp,
	}); err != nil {
		_ = l.deps.Tokens.DeleteAllForUser(context.WithoutCancel(ctx), userID)
		return nil, err
	}

	return &Pair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		Cookie: CookieDescriptor{
			Name:    l.deps.CookieName,
			Value:   refresh,
			Expires: refreshExp,
		},
	}, nil
}

// InvalidateAll borra todas las filas (access y refresh) del usuario.
// Borrar cero filas no es error: logout es idempotente.
func (l *Ledger) InvalidateAll(ctx context.Context, userID string) error {
	return l.deps.Tokens.DeleteAllForUser(ctx, userID)
}

// IsLive indica si existe una fila exacta para ese token string.
// Lo usan las estrategias para rechazar tokens deslogueados cuya firma
// todavía verifica.
func (l *Ledger) IsLive(ctx context.Context, tokenStr string) (bool, error) {
	return l.deps.Tokens.ExistsByToken(ctx, tokenStr)
}

// CookieName expone el nombre configurado de la cookie de refresh.
func (l *Ledger) CookieName() string { return l.deps.CookieName }
