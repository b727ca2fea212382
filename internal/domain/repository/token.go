package repository

import (
	"context"
	"time"
)

// TokenKind distingue tokens de acceso de tokens de refresco.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Token es una fila del ledger de tokens emitidos.
//
// La revocación se modela como BORRADO de fila, nunca como flag: un
// token es válido sii (a) su firma y expiración verifican y (b) su fila
// todavía existe. Ese doble chequeo cierra la ventana en la que un
// token criptográficamente válido pero deslogueado podría reutilizarse.
type Token struct {
	Token     string
	UserID    string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenRepository define el CRUD mínimo sobre filas de tokens.
type TokenRepository interface {
	// Create persiste una fila de token.
	Create(ctx context.Context, t Token) error

	// DeleteAllForUser borra TODAS las filas (access y refresh) del usuario.
	// Borrar cero filas no es error.
	DeleteAllForUser(ctx context.Context, userID string) error

	// ExistsByToken indica si existe una fila con exactamente ese string.
	ExistsByToken(ctx context.Context, token string) (bool, error)
}
