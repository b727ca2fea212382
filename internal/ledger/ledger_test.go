package ledger_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/store/memory"
	"github.com/dropDatabas3/gatekeep/internal/token"
)

func newLedger(t *testing.T) (*ledger.Ledger, *memory.Store) {
	t.Helper()
	access, err := token.New("test", nil, 15*time.Minute)
	require.NoError(t, err)
	refresh, err := token.New("test", nil, 24*time.Hour)
	require.NoError(t, err)

	mem := memory.New()
	return ledger.New(ledger.Deps{
		Tokens:  mem,
		Access:  access,
		Refresh: refresh,
	}), mem
}

func TestLedger_IssuePair(t *testing.T) {
	led, mem := newLedger(t)
	ctx := context.Background()

	pair, err := led.IssuePair(ctx, "user-1", "user@example.com", 0)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, 2, mem.TokenCount("user-1"))

	// Ambas filas viven.
	live, err := led.IsLive(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.True(t, live)
	live, err = led.IsLive(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.True(t, live)

	// La cookie transporta el refresh con la política fija.
	ck := pair.Cookie.Cookie()
	require.Equal(t, ledger.DefaultCookieName, ck.Name)
	require.Equal(t, pair.RefreshToken, ck.Value)
	require.True(t, ck.HttpOnly)
	require.True(t, ck.Secure)
	require.Equal(t, http.SameSiteStrictMode, ck.SameSite)
}

func TestLedger_InvalidateAll(t *testing.T) {
	led, mem := newLedger(t)
	ctx := context.Background()

	pair, err := led.IssuePair(ctx, "user-1", "s", 0)
	require.NoError(t, err)

	require.NoError(t, led.InvalidateAll(ctx, "user-1"))
	require.Zero(t, mem.TokenCount("user-1"))

	// Revocar es borrar: la fila ya no existe aunque la firma verifique.
	live, err := led.IsLive(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.False(t, live)

	// Idempotente.
	require.NoError(t, led.InvalidateAll(ctx, "user-1"))
}

func TestLedger_ContextCancelado(t *testing.T) {
	led, mem := newLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := led.IssuePair(ctx, "user-1", "s", 0)
	require.Error(t, err)
	require.Zero(t, mem.TokenCount("user-1"))
}

func TestDeletionCookie(t *testing.T) {
	ck := ledger.DeletionCookie("gk_refresh")
	require.Equal(t, "gk_refresh", ck.Name)
	require.Empty(t, ck.Value)
	require.Equal(t, -1, ck.MaxAge)
}
