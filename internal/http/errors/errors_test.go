package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeep/internal/account"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/rate"
)

func TestFromDomain(t *testing.T) {
	cases := map[string]struct {
		err    error
		code   string
		status int
	}{
		"unauthorized": {repository.ErrUnauthorized, "INVALID_CREDENTIALS", http.StatusUnauthorized},
		"forbidden":    {repository.ErrForbidden, "FORBIDDEN", http.StatusForbidden},
		"not found":    {repository.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		"conflict":     {fmt.Errorf("%w: duplicado", repository.ErrConflict), "CONFLICT", http.StatusConflict},
		"store caído":  {repository.ErrStoreUnavailable, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		"rate limit":   {rate.ErrRateExceeded, "RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests},
		"cuenta":       {account.ErrAccountNotFound, "USER_NOT_FOUND", http.StatusNotFound},
		"campos":       {account.ErrMissingFields, "MISSING_FIELDS", http.StatusBadRequest},
		"intentos":     {account.ErrTooManyAttempts, "RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests},
		"genérico":     {fmt.Errorf("boom"), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := FromDomain(tc.err)
			require.Equal(t, tc.code, app.Code)
			require.Equal(t, tc.status, app.HTTPStatus)
		})
	}

	require.Nil(t, FromDomain(nil))
}
