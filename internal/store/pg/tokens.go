package pg

import (
	"context"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
)

// Create persiste una fila de token.
func (s *Store) Create(ctx context.Context, t repository.Token) error {
	const q = `
INSERT INTO tokens (token, user_id, kind, issued_at, expires_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := s.pool.Exec(ctx, q, t.Token, t.UserID, string(t.Kind), t.IssuedAt, t.ExpiresAt)
	return wrapErr(err)
}

// DeleteAllForUser borra todas las filas (access y refresh) del usuario.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM tokens WHERE user_id = $1`
	_, err := s.pool.Exec(ctx, q, userID)
	return wrapErr(err)
}

// ExistsByToken indica si existe una fila con exactamente ese string.
func (s *Store) ExistsByToken(ctx context.Context, token string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM tokens WHERE token = $1)`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, token).Scan(&ok); err != nil {
		return false, wrapErr(err)
	}
	return ok, nil
}

// PurgeExpired borra filas ya vencidas. No afecta validez (un token
// vencido falla el verify igual); solo higiene de la tabla.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM tokens WHERE expires_at < NOW()`
	ct, err := s.pool.Exec(ctx, q)
	if err != nil {
		return 0, wrapErr(err)
	}
	return ct.RowsAffected(), nil
}
