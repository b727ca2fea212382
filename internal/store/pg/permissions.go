package pg

import (
	"context"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
)

// FindByTrustee retorna todos los grants de los trustees dados.
func (s *Store) FindByTrustee(ctx context.Context, t repository.TrusteeType, trusteeIDs []string) ([]repository.Permission, error) {
	if len(trusteeIDs) == 0 {
		return nil, nil
	}
	const q = `
SELECT id, resource, action, trustee_type, trustee_id
FROM permissions
WHERE trustee_type = $1 AND trustee_id = ANY($2)
ORDER BY resource, action`
	rows, err := s.pool.Query(ctx, q, string(t), trusteeIDs)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []repository.Permission
	for rows.Next() {
		var p repository.Permission
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action, &p.Trustee, &p.TrusteeID); err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, p)
	}
	return out, wrapErr(rows.Err())
}
