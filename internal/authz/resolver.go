// Package authz resuelve permisos finos sobre tres niveles de
// confianza: organización, roles y usuario.
package authz

import (
	"context"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
)

// Resolver decide allow/deny para un par (resource, action) requerido.
type Resolver struct {
	Perms repository.PermissionRepository
}

// New crea un resolver sobre el PermissionRepository dado.
func New(perms repository.PermissionRepository) *Resolver {
	return &Resolver{Perms: perms}
}

// IsAllowed recorre organización → roles → usuario y corta en el primer
// grant que matchee (mismo resource y misma action o MANAGE).
//
// Es un orden de BÚSQUEDA, no de override: cada nivel es un chequeo de
// existencia puro; que un nivel superior no tenga grant jamás bloquea
// el grant de un nivel inferior. Sin match en los tres niveles: deny.
//
// Un fallo del store se propaga, nunca se degrada a deny.
func (r *Resolver) IsAllowed(ctx context.Context, user *repository.User, resource string, action repository.Action) (bool, error) {
	if user == nil {
		return false, nil
	}

	if user.OrganizationID != nil && *user.OrganizationID != "" {
		grants, err := r.Perms.FindByTrustee(ctx, repository.TrusteeOrganization, []string{*user.OrganizationID})
		if err != nil {
			return false, err
		}
		if anyMatch(grants, resource, action) {
			return true, nil
		}
	}

	if len(user.RoleIDs) > 0 {
		grants, err := r.Perms.FindByTrustee(ctx, repository.TrusteeRole, user.RoleIDs)
		if err != nil {
			return false, err
		}
		if anyMatch(grants, resource, action) {
			return true, nil
		}
	}

	grants, err := r.Perms.FindByTrustee(ctx, repository.TrusteeUser, []string{user.ID})
	if err != nil {
		return false, err
	}
	return anyMatch(grants, resource, action), nil
}

func anyMatch(grants []repository.Permission, resource string, action repository.Action) bool {
	for _, g := range grants {
		if g.Matches(resource, action) {
			return true
		}
	}
	return false
}
