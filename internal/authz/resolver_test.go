package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeep/internal/authz"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/store/memory"
)

func TestIsAllowed_TresNiveles(t *testing.T) {
	mem := memory.New()
	res := authz.New(mem)
	ctx := context.Background()

	org := "org-1"
	user := &repository.User{
		ID:             "user-1",
		OrganizationID: &org,
		RoleIDs:        []string{"role-a", "role-b"},
	}

	mem.Grant(repository.Permission{Resource: "invoices", Action: repository.ActionList, Trustee: repository.TrusteeOrganization, TrusteeID: "org-1"})
	mem.Grant(repository.Permission{Resource: "invoices", Action: repository.ActionCreate, Trustee: repository.TrusteeRole, TrusteeID: "role-b"})
	mem.Grant(repository.Permission{Resource: "reports", Action: repository.ActionGet, Trustee: repository.TrusteeUser, TrusteeID: "user-1"})

	cases := []struct {
		name     string
		resource string
		action   repository.Action
		want     bool
	}{
		{"grant de organización", "invoices", repository.ActionList, true},
		{"grant de rol", "invoices", repository.ActionCreate, true},
		{"grant directo de usuario", "reports", repository.ActionGet, true},
		{"action no otorgada", "invoices", repository.ActionDelete, false},
		{"resource sin grants", "payments", repository.ActionGet, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := res.IsAllowed(ctx, user, tc.resource, tc.action)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestIsAllowed_ManageEsComodin(t *testing.T) {
	mem := memory.New()
	res := authz.New(mem)
	ctx := context.Background()

	mem.Grant(repository.Permission{Resource: "invoices", Action: repository.ActionManage, Trustee: repository.TrusteeUser, TrusteeID: "user-1"})
	user := &repository.User{ID: "user-1"}

	for _, a := range []repository.Action{
		repository.ActionGet, repository.ActionList, repository.ActionCreate,
		repository.ActionUpdate, repository.ActionDelete, repository.ActionManage,
	} {
		ok, err := res.IsAllowed(ctx, user, "invoices", a)
		require.NoError(t, err)
		require.True(t, ok, "MANAGE debería cubrir %s", a)
	}

	// El comodín es por resource, no global.
	ok, err := res.IsAllowed(ctx, user, "reports", repository.ActionGet)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsAllowed_NivelInferiorNoSeBloquea(t *testing.T) {
	// La organización no tiene ningún grant y eso no pisa el grant
	// directo del usuario: es búsqueda, no override.
	mem := memory.New()
	res := authz.New(mem)

	org := "org-1"
	user := &repository.User{ID: "user-1", OrganizationID: &org}
	mem.Grant(repository.Permission{Resource: "reports", Action: repository.ActionGet, Trustee: repository.TrusteeUser, TrusteeID: "user-1"})

	ok, err := res.IsAllowed(context.Background(), user, "reports", repository.ActionGet)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsAllowed_DenyPorDefecto(t *testing.T) {
	mem := memory.New()
	res := authz.New(mem)

	ok, err := res.IsAllowed(context.Background(), &repository.User{ID: "user-1"}, "invoices", repository.ActionGet)
	require.NoError(t, err)
	require.False(t, ok)

	// Identidad sin usuario (ruta pública) nunca autoriza.
	ok, err = res.IsAllowed(context.Background(), nil, "invoices", repository.ActionGet)
	require.NoError(t, err)
	require.False(t, ok)
}

// failingPerms simula un store caído.
type failingPerms struct{ err error }

func (f failingPerms) FindByTrustee(context.Context, repository.TrusteeType, []string) ([]repository.Permission, error) {
	return nil, f.err
}

func TestIsAllowed_FalloDelStoreSePropaga(t *testing.T) {
	boom := errors.New("store caído")
	res := authz.New(failingPerms{err: boom})

	ok, err := res.IsAllowed(context.Background(), &repository.User{ID: "user-1"}, "invoices", repository.ActionGet)
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
}
