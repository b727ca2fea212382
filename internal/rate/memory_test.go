package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_ConsumeHastaAgotar(t *testing.T) {
	l := NewMemory(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Consume(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, res.Allowed)
		require.Equal(t, 2-i, res.Remaining)
	}

	res, err := l.Consume(ctx, "1.2.3.4")
	require.ErrorIs(t, err, ErrRateExceeded)
	require.False(t, res.Allowed)
	require.Greater(t, res.RetryAfter, time.Duration(0))

	// Otra key no comparte presupuesto.
	_, err = l.Consume(ctx, "5.6.7.8")
	require.NoError(t, err)
}

func TestMemoryLimiter_VentanaResetea(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemory(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Consume(ctx, "k")
	_, _ = l.Consume(ctx, "k")
	_, err := l.Consume(ctx, "k")
	require.ErrorIs(t, err, ErrRateExceeded)

	// Dentro de la ventana sigue agotado.
	now = now.Add(30 * time.Second)
	_, err = l.Consume(ctx, "k")
	require.ErrorIs(t, err, ErrRateExceeded)

	// Expirada la ventana el contador vuelve a cero, no decae de a poco.
	now = now.Add(31 * time.Second)
	res, err := l.Consume(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, 1, res.Remaining)
}

func TestMemoryLimiter_Allow_NoConsume(t *testing.T) {
	l := NewMemory(1, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	// Allow repetido no gasta puntos.
	ok, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = l.Consume(ctx, "k")
	require.NoError(t, err)

	ok, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryLimiter_Reset(t *testing.T) {
	l := NewMemory(1, time.Minute)
	ctx := context.Background()

	_, err := l.Consume(ctx, "user-1")
	require.NoError(t, err)
	_, err = l.Consume(ctx, "user-1")
	require.ErrorIs(t, err, ErrRateExceeded)

	require.NoError(t, l.Reset(ctx, "user-1"))

	res, err := l.Consume(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
