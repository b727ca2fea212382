package authn_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/store/memory"
	"github.com/dropDatabas3/gatekeep/internal/token"
)

// Seed fijo: permite firmar tokens "viejos" con un códec aparte que
// comparte clave con el del entorno.
var refreshSeed = bytes.Repeat([]byte{7}, 32)

type authEnv struct {
	mem     *memory.Store
	led     *ledger.Ledger
	access  *token.Codec
	refresh *token.Codec
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	access, err := token.New("gatekeep", nil, 15*time.Minute)
	require.NoError(t, err)
	refresh, err := token.New("gatekeep", refreshSeed, 24*time.Hour)
	require.NoError(t, err)

	mem := memory.New()
	return &authEnv{
		mem:     mem,
		access:  access,
		refresh: refresh,
		led: ledger.New(ledger.Deps{
			Tokens:  mem,
			Access:  access,
			Refresh: refresh,
		}),
	}
}

func TestRefreshStrategy_OK(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.mem.PutUser(repository.User{Email: strPtr("ana@example.com")})

	pair, err := env.led.IssuePair(ctx, u.ID, "ana@example.com", 0)
	require.NoError(t, err)

	s := &authn.RefreshStrategy{Users: env.mem, Ledger: env.led, Refresh: env.refresh}
	id, err := s.Authenticate(ctx, &authn.Request{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	require.Equal(t, u.ID, id.User.ID)
	require.Equal(t, authn.TagRefresh, id.Strategy)
	require.Equal(t, "ana@example.com", id.Subject)
}

func TestRefreshStrategy_Expirado_InvalidaSesionEntera(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.mem.PutUser(repository.User{Email: strPtr("ana@example.com")})

	// Sesión viva.
	_, err := env.led.IssuePair(ctx, u.ID, "s", 0)
	require.NoError(t, err)
	require.Equal(t, 2, env.mem.TokenCount(u.ID))

	// Refresh vencido firmado con la misma clave (TTL negativo).
	stale, err := token.New("gatekeep", refreshSeed, -time.Minute)
	require.NoError(t, err)
	expired, _, err := stale.Sign(u.ID, "s", 0)
	require.NoError(t, err)

	s := &authn.RefreshStrategy{Users: env.mem, Ledger: env.led, Refresh: env.refresh}
	_, err = s.Authenticate(ctx, &authn.Request{RefreshToken: expired})
	require.True(t, repository.IsUnauthorized(err))

	// Un refresh vencido visto en el wild mata TODA la sesión.
	require.Zero(t, env.mem.TokenCount(u.ID))
}

func TestRefreshStrategy_Deslistado_InvalidaSesionEntera(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.mem.PutUser(repository.User{Email: strPtr("ana@example.com")})

	old, err := env.led.IssuePair(ctx, u.ID, "s", 0)
	require.NoError(t, err)
	// Re-login: invalidar y emitir de nuevo, el par viejo queda deslistado.
	require.NoError(t, env.led.InvalidateAll(ctx, u.ID))
	_, err = env.led.IssuePair(ctx, u.ID, "s", 0)
	require.NoError(t, err)
	require.Equal(t, 2, env.mem.TokenCount(u.ID))

	// Replay del refresh viejo: firma válida, fila borrada.
	s := &authn.RefreshStrategy{Users: env.mem, Ledger: env.led, Refresh: env.refresh}
	_, err = s.Authenticate(ctx, &authn.Request{RefreshToken: old.RefreshToken})
	require.True(t, repository.IsUnauthorized(err))

	// El replay arrastra también a la sesión nueva.
	require.Zero(t, env.mem.TokenCount(u.ID))
}

func TestRefreshStrategy_SinToken(t *testing.T) {
	env := newAuthEnv(t)
	s := &authn.RefreshStrategy{Users: env.mem, Ledger: env.led, Refresh: env.refresh}

	_, err := s.Authenticate(context.Background(), &authn.Request{})
	require.True(t, repository.IsUnauthorized(err))
}

// ---------- bearer (default) ----------

func TestBearerStrategy_OK(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.mem.PutUser(repository.User{Email: strPtr("ana@example.com")})

	pair, err := env.led.IssuePair(ctx, u.ID, "ana@example.com", 0)
	require.NoError(t, err)

	s := &authn.BearerStrategy{Users: env.mem, Ledger: env.led, Access: env.access}
	id, err := s.Authenticate(ctx, &authn.Request{Bearer: pair.AccessToken})
	require.NoError(t, err)
	require.Equal(t, u.ID, id.User.ID)
	require.Equal(t, authn.TagDefault, id.Strategy)
}

func TestBearerStrategy_Deslistado_NoEscala(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.mem.PutUser(repository.User{Email: strPtr("ana@example.com")})

	old, err := env.led.IssuePair(ctx, u.ID, "s", 0)
	require.NoError(t, err)
	require.NoError(t, env.led.InvalidateAll(ctx, u.ID))
	fresh, err := env.led.IssuePair(ctx, u.ID, "s", 0)
	require.NoError(t, err)

	s := &authn.BearerStrategy{Users: env.mem, Ledger: env.led, Access: env.access}

	// El access viejo solo se rechaza, sin tocar el par nuevo: tras un
	// re-login rutinario el token anterior queda deslistado y eso no es
	// señal de ataque.
	_, err = s.Authenticate(ctx, &authn.Request{Bearer: old.AccessToken})
	require.True(t, repository.IsUnauthorized(err))
	require.Equal(t, 2, env.mem.TokenCount(u.ID))

	id, err := s.Authenticate(ctx, &authn.Request{Bearer: fresh.AccessToken})
	require.NoError(t, err)
	require.Equal(t, u.ID, id.User.ID)
}

func TestBearerStrategy_FirmaAjena(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.mem.PutUser(repository.User{Email: strPtr("ana@example.com")})

	otro, err := token.New("gatekeep", nil, 15*time.Minute)
	require.NoError(t, err)
	forged, _, err := otro.Sign(u.ID, "s", 0)
	require.NoError(t, err)

	s := &authn.BearerStrategy{Users: env.mem, Ledger: env.led, Access: env.access}
	_, err = s.Authenticate(ctx, &authn.Request{Bearer: forged})
	require.True(t, repository.IsUnauthorized(err))
}

func TestBearerStrategy_UsuarioInactivo(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.mem.PutUser(repository.User{Email: strPtr("ana@example.com")})

	pair, err := env.led.IssuePair(ctx, u.ID, "s", 0)
	require.NoError(t, err)

	// Baja posterior a la emisión: el token vivo deja de servir.
	u.Status = repository.UserInactive
	env.mem.PutUser(u)

	s := &authn.BearerStrategy{Users: env.mem, Ledger: env.led, Access: env.access}
	_, err = s.Authenticate(ctx, &authn.Request{Bearer: pair.AccessToken})
	require.True(t, repository.IsUnauthorized(err))
}
