package repository

import "context"

// Action es el verbo protegido de un permiso.
type Action string

const (
	ActionGet    Action = "GET"
	ActionList   Action = "LIST"
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"

	// ActionManage es comodín: satisface cualquier action requerida
	// sobre el mismo resource.
	ActionManage Action = "MANAGE"
)

// TrusteeType es el tipo de entidad a la que se otorga un permiso.
type TrusteeType string

const (
	TrusteeUser         TrusteeType = "USER"
	TrusteeRole         TrusteeType = "ROLE"
	TrusteeOrganization TrusteeType = "ORGANIZATION"
)

// Permission es un grant de (resource, action) a un trustee.
// La evaluación es puramente aditiva: la ausencia de grant deniega;
// no existe grant de "deny" explícito.
type Permission struct {
	ID        string
	Resource  string
	Action    Action
	Trustee   TrusteeType
	TrusteeID string
}

// Matches indica si el grant satisface el par (resource, action) requerido.
func (p Permission) Matches(resource string, action Action) bool {
	return p.Resource == resource && (p.Action == action || p.Action == ActionManage)
}

// PermissionRepository define la lectura de grants.
// El CRUD administrativo de permisos vive fuera de este core.
type PermissionRepository interface {
	// FindByTrustee retorna todos los grants de los trustees dados.
	FindByTrustee(ctx context.Context, t TrusteeType, trusteeIDs []string) ([]Permission, error)
}
