package pg

import (
	"context"
	"strings"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	u.id, u.email, u.phone, u.password_hash, u.status, u.organization_id,
	u.first_name, u.middle_name, u.last_name, u.suffix, u.date_of_birth,
	u.last_login_at, u.created_at`

func (s *Store) scanUser(ctx context.Context, row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.Status, &u.OrganizationID,
		&u.FirstName, &u.MiddleName, &u.LastName, &u.Suffix, &u.DateOfBirth,
		&u.LastLoginAt, &u.CreatedAt,
	)
	if err != nil {
		return nil, wrapErr(err)
	}
	roles, err := s.loadRoles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.RoleIDs = roles
	return &u, nil
}

func (s *Store) loadRoles(ctx context.Context, userID string) ([]string, error) {
	const q = `SELECT role_id FROM user_roles WHERE user_id = $1 ORDER BY role_id`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, r)
	}
	return out, wrapErr(rows.Err())
}

// FindByID busca un usuario por ID.
func (s *Store) FindByID(ctx context.Context, id string) (*repository.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	return s.scanUser(ctx, s.pool.QueryRow(ctx, q, id))
}

// FindByAccount prueba, en orden: formato uuid (ID directo), email,
// teléfono. Retorna ErrNotFound si ninguno matchea.
func (s *Store) FindByAccount(ctx context.Context, account string) (*repository.User, error) {
	account = strings.TrimSpace(account)

	if _, err := uuid.Parse(account); err == nil {
		u, err := s.FindByID(ctx, account)
		if err == nil {
			return u, nil
		}
		if !repository.IsNotFound(err) {
			return nil, err
		}
	}

	const byEmail = `SELECT ` + userColumns + ` FROM users u WHERE lower(u.email) = lower($1)`
	u, err := s.scanUser(ctx, s.pool.QueryRow(ctx, byEmail, account))
	if err == nil {
		return u, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	const byPhone = `SELECT ` + userColumns + ` FROM users u WHERE u.phone = $1`
	return s.scanUser(ctx, s.pool.QueryRow(ctx, byPhone, account))
}

// FindByProfile retorna todos los usuarios cuyo perfil coincide.
// first/last/dob son obligatorios; middle y suffix solo filtran si la
// query los trae.
func (s *Store) FindByProfile(ctx context.Context, q repository.ProfileQuery) ([]repository.User, error) {
	const sql = `
SELECT ` + userColumns + `
FROM users u
WHERE lower(u.first_name) = lower($1)
  AND lower(u.last_name)  = lower($2)
  AND u.date_of_birth     = $3
  AND ($4 = '' OR lower(u.middle_name) = lower($4))
  AND ($5 = '' OR lower(u.suffix)      = lower($5))
ORDER BY u.id`
	rows, err := s.pool.Query(ctx, sql, q.FirstName, q.LastName, q.DateOfBirth, q.MiddleName, q.Suffix)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []repository.User
	for rows.Next() {
		var u repository.User
		err := rows.Scan(
			&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.Status, &u.OrganizationID,
			&u.FirstName, &u.MiddleName, &u.LastName, &u.Suffix, &u.DateOfBirth,
			&u.LastLoginAt, &u.CreatedAt,
		)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err)
	}
	for i := range out {
		roles, err := s.loadRoles(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].RoleIDs = roles
	}
	return out, nil
}

// TouchLastLogin actualiza el timestamp de último login.
func (s *Store) TouchLastLogin(ctx context.Context, userID string) error {
	const q = `UPDATE users SET last_login_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, q, userID)
	return wrapErr(err)
}

// UpdatePasswordHash reemplaza el hash de password.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1`
	ct, err := s.pool.Exec(ctx, q, userID, newHash)
	if err != nil {
		return wrapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
