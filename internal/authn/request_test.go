package authn_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
)

func TestFromHTTP_HeadersYCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/me", nil)
	r.Header.Set("Origin", "https://app.example.com/")
	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	r.AddCookie(&http.Cookie{Name: ledger.DefaultCookieName, Value: "refresh-jwt"})

	req := authn.FromHTTP(r, ledger.DefaultCookieName)
	require.Equal(t, "https://app.example.com", req.Origin)
	require.Equal(t, "abc.def.ghi", req.Bearer)
	require.Equal(t, "refresh-jwt", req.RefreshToken)
}

func TestFromHTTP_Body(t *testing.T) {
	body := `{"account":" ana@example.com ","password":"s3creta","first_name":"Ana","last_name":"García","date_of_birth":"1990-04-12"}`
	r := httptest.NewRequest("POST", "/v1/auth/login", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	req := authn.FromHTTP(r, ledger.DefaultCookieName)
	require.Equal(t, "ana@example.com", req.Account)
	require.Equal(t, "s3creta", req.Password)
	require.Equal(t, "Ana", req.Profile.FirstName)
	require.NotNil(t, req.Profile.DateOfBirth)
	require.Equal(t, 1990, req.Profile.DateOfBirth.Year())

	// El peek repone el body: el handler puede volver a decodificarlo.
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.JSONEq(t, body, string(raw))
}

func TestFromHTTP_RefreshDeHeader(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/auth/refresh", nil)
	r.Header.Set("X-Refresh-Token", "refresh-jwt")

	req := authn.FromHTTP(r, ledger.DefaultCookieName)
	require.Equal(t, "refresh-jwt", req.RefreshToken)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.7:4432"
	require.Equal(t, "192.0.2.7", authn.ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	require.Equal(t, "203.0.113.5", authn.ClientIP(r))
}
