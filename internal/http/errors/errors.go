package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/gatekeep/internal/account"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/rate"
)

// errorResponse structura interna para la serialización JSON.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// FromDomain mapea los errores del dominio y de la fachada de cuentas a
// su AppError correspondiente. Los sentinels específicos van primero; los
// genéricos del repositorio, al final.
func FromDomain(err error) *AppError {
	switch {
	case err == nil:
		return nil

	// Facade de cuentas: casos con status propio.
	case stderrors.Is(err, account.ErrTooManyAttempts),
		stderrors.Is(err, rate.ErrRateExceeded):
		return ErrRateLimitExceeded.WithCause(err)
	case stderrors.Is(err, account.ErrMissingFields):
		return ErrMissingFields.WithCause(err)
	case stderrors.Is(err, account.ErrAccountNotFound):
		return ErrUserNotFound.WithCause(err)

	// Sentinels del dominio.
	case repository.IsUnauthorized(err):
		return ErrInvalidCredentials.WithCause(err)
	case repository.IsForbidden(err):
		return ErrForbidden.WithCause(err)
	case repository.IsNotFound(err):
		return ErrNotFound.WithCause(err)
	case repository.IsConflict(err):
		return ErrConflict.WithCause(err)
	case stderrors.Is(err, repository.ErrStoreUnavailable):
		return ErrServiceUnavailable.WithCause(err)
	}
	return FromError(err)
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Maneja automáticamente errores de tipo *AppError y errores genéricos.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
