package authn_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/security/password"
	"github.com/dropDatabas3/gatekeep/internal/store/memory"
)

// Params livianos para que los tests no paguen el costo de producción.
var testHashParams = password.Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func seedUser(t *testing.T, mem *memory.Store, email, plain string) repository.User {
	t.Helper()
	phc, err := password.Hash(testHashParams, plain)
	require.NoError(t, err)
	return mem.PutUser(repository.User{
		Email:        strPtr(email),
		PasswordHash: &phc,
	})
}

// ---------- password ----------

func TestPasswordStrategy_OK(t *testing.T) {
	mem := memory.New()
	u := seedUser(t, mem, "ana@example.com", "s3creta")
	s := &authn.PasswordStrategy{Users: mem}

	id, err := s.Authenticate(context.Background(), &authn.Request{
		Account:  "ana@example.com",
		Password: "s3creta",
	})
	require.NoError(t, err)
	require.Equal(t, u.ID, id.User.ID)
	require.Equal(t, authn.TagPassword, id.Strategy)
}

func TestPasswordStrategy_Rechazos(t *testing.T) {
	mem := memory.New()
	seedUser(t, mem, "ana@example.com", "s3creta")
	mem.PutUser(repository.User{
		Email:  strPtr("baja@example.com"),
		Status: repository.UserInactive,
	})
	s := &authn.PasswordStrategy{Users: mem}
	ctx := context.Background()

	cases := []struct {
		name string
		req  authn.Request
	}{
		{"password incorrecto", authn.Request{Account: "ana@example.com", Password: "otra"}},
		{"cuenta inexistente", authn.Request{Account: "nadie@example.com", Password: "s3creta"}},
		{"usuario inactivo", authn.Request{Account: "baja@example.com", Password: "s3creta"}},
		{"sin password", authn.Request{Account: "ana@example.com"}},
		{"sin cuenta", authn.Request{Password: "s3creta"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Authenticate(ctx, &tc.req)
			require.True(t, repository.IsUnauthorized(err), "esperaba Unauthorized, vino: %v", err)
		})
	}
}

// ---------- profile ----------

func TestProfileStrategy_MatchUnico(t *testing.T) {
	mem := memory.New()
	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	u := mem.PutUser(repository.User{
		FirstName:   "Ana",
		LastName:    "García",
		DateOfBirth: timePtr(dob),
	})
	s := &authn.ProfileStrategy{Users: mem}

	id, err := s.Authenticate(context.Background(), &authn.Request{
		Profile: repository.ProfileQuery{FirstName: "Ana", LastName: "García", DateOfBirth: timePtr(dob)},
	})
	require.NoError(t, err)
	require.Equal(t, u.ID, id.User.ID)
	require.Equal(t, authn.TagProfile, id.Strategy)
}

func TestProfileStrategy_CeroMatches(t *testing.T) {
	mem := memory.New()
	s := &authn.ProfileStrategy{Users: mem}
	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)

	_, err := s.Authenticate(context.Background(), &authn.Request{
		Profile: repository.ProfileQuery{FirstName: "Ana", LastName: "García", DateOfBirth: timePtr(dob)},
	})
	require.True(t, repository.IsUnauthorized(err))
}

func TestProfileStrategy_MatchAmbiguo(t *testing.T) {
	// Dos homónimos con la misma fecha: la ambigüedad nunca se resuelve
	// eligiendo uno, falla igual que cero matches.
	mem := memory.New()
	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		mem.PutUser(repository.User{
			FirstName:   "Ana",
			LastName:    "García",
			DateOfBirth: timePtr(dob),
		})
	}
	s := &authn.ProfileStrategy{Users: mem}

	_, err := s.Authenticate(context.Background(), &authn.Request{
		Profile: repository.ProfileQuery{FirstName: "Ana", LastName: "García", DateOfBirth: timePtr(dob)},
	})
	require.True(t, repository.IsUnauthorized(err))
}

func TestProfileStrategy_PerfilIncompleto(t *testing.T) {
	mem := memory.New()
	s := &authn.ProfileStrategy{Users: mem}

	_, err := s.Authenticate(context.Background(), &authn.Request{
		Profile: repository.ProfileQuery{FirstName: "Ana"},
	})
	require.True(t, repository.IsUnauthorized(err))
}

// ---------- uuid ----------

func TestUuidStrategy(t *testing.T) {
	mem := memory.New()
	u := mem.PutUser(repository.User{Email: strPtr("ana@example.com")})
	s := &authn.UuidStrategy{Users: mem}
	ctx := context.Background()

	id, err := s.Authenticate(ctx, &authn.Request{UserID: u.ID})
	require.NoError(t, err)
	require.Equal(t, u.ID, id.User.ID)

	// Account como fallback del campo UserID.
	id, err = s.Authenticate(ctx, &authn.Request{Account: u.ID})
	require.NoError(t, err)
	require.Equal(t, u.ID, id.User.ID)

	_, err = s.Authenticate(ctx, &authn.Request{UserID: "no-es-un-uuid"})
	require.True(t, repository.IsUnauthorized(err))

	_, err = s.Authenticate(ctx, &authn.Request{UserID: "7b2e9c5a-0f1d-4e8b-9a3c-2d6f8e1a4b5c"})
	require.True(t, repository.IsUnauthorized(err))
}
