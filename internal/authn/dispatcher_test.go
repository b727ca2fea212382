package authn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
)

func TestDispatcher_RequiereDefault(t *testing.T) {
	_, err := authn.NewDispatcher(nil)
	require.Error(t, err)

	_, err = authn.NewDispatcher(nil, authn.PublicStrategy{})
	require.Error(t, err)
}

func TestDispatcher_Select(t *testing.T) {
	env := newAuthEnv(t)
	bearer := &authn.BearerStrategy{Users: env.mem, Ledger: env.led, Access: env.access}
	pass := &authn.PasswordStrategy{Users: env.mem}

	d, err := authn.NewDispatcher(nil, authn.PublicStrategy{}, pass, bearer)
	require.NoError(t, err)

	// Sin tags cae al default.
	require.Equal(t, authn.TagDefault, d.Select().Tag())

	// Con varios tags gana el de mayor precedencia.
	require.Equal(t, authn.TagPublic, d.Select(authn.TagPassword, authn.TagPublic).Tag())
	require.Equal(t, authn.TagPassword, d.Select(authn.TagDefault, authn.TagPassword).Tag())

	// Un tag sin estrategia registrada cae al default.
	require.Equal(t, authn.TagDefault, d.Select(authn.TagUuid).Tag())
}

func TestDispatcher_Origenes(t *testing.T) {
	env := newAuthEnv(t)
	bearer := &authn.BearerStrategy{Users: env.mem, Ledger: env.led, Access: env.access}

	d, err := authn.NewDispatcher([]string{"https://app.example.com/"}, authn.PublicStrategy{}, bearer)
	require.NoError(t, err)

	// El trailing slash se normaliza y el match ignora mayúsculas.
	require.True(t, d.OriginAllowed("https://app.example.com"))
	require.True(t, d.OriginAllowed("HTTPS://APP.EXAMPLE.COM"))
	// Un cliente no-browser no manda Origin y siempre pasa.
	require.True(t, d.OriginAllowed(""))
	require.False(t, d.OriginAllowed("https://evil.example.com"))

	_, err = d.Authenticate(context.Background(), &authn.Request{Origin: "https://evil.example.com"}, authn.TagPublic)
	require.True(t, repository.IsForbidden(err))

	id, err := d.Authenticate(context.Background(), &authn.Request{Origin: "https://app.example.com"}, authn.TagPublic)
	require.NoError(t, err)
	require.Equal(t, authn.TagPublic, id.Strategy)
	require.Nil(t, id.User)
}

func TestDispatcher_ComodinDeOrigen(t *testing.T) {
	env := newAuthEnv(t)
	bearer := &authn.BearerStrategy{Users: env.mem, Ledger: env.led, Access: env.access}

	d, err := authn.NewDispatcher([]string{"*"}, bearer)
	require.NoError(t, err)
	require.True(t, d.OriginAllowed("https://cualquiera.example.com"))
}
