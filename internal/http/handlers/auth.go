// Package handlers contiene los handlers HTTP de la API.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/gatekeep/internal/account"
	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/http/dto"
	httperrors "github.com/dropDatabas3/gatekeep/internal/http/errors"
	"github.com/dropDatabas3/gatekeep/internal/http/middlewares"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
	"github.com/dropDatabas3/gatekeep/internal/otp"
	"github.com/dropDatabas3/gatekeep/internal/util"
)

// OriginPolicy aplica el allow-list de orígenes. Los login por
// estrategia pasan por el dispatcher, que ya lo chequea; el login por
// password y el refresh van directo a la fachada, así que el handler
// aplica el mismo allow-list antes de tocar credenciales.
type OriginPolicy interface {
	OriginAllowed(origin string) bool
}

// AuthHandler agrupa los endpoints de sesión: login en sus variantes,
// logout, refresh y la vista del usuario autenticado.
type AuthHandler struct {
	Svc        account.Service
	Codes      *otp.Store
	CookieName string
	Origins    OriginPolicy
}

func (h *AuthHandler) originAllowed(r *http.Request) bool {
	return h.Origins == nil || h.Origins.OriginAllowed(origin(r))
}

// Login maneja POST /v1/auth/login (account + password).
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.originAllowed(r) {
		httperrors.WriteError(w, httperrors.ErrOriginNotAllowed)
		return
	}

	var body dto.LoginRequest
	if !readJSON(w, r, &body) {
		return
	}
	if err := body.Validate(); err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
		return
	}

	pair, err := h.Svc.Login(r.Context(), account.LoginInput{
		Account:  body.Account,
		Password: body.Password,
		RemoteIP: authn.ClientIP(r),
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	http.SetCookie(w, pair.Cookie.Cookie())
	writeJSON(w, http.StatusOK, dto.NewTokenResponse(pair))
}

// LoginCode maneja POST /v1/auth/login/code (account + código de un uso).
func (h *AuthHandler) LoginCode(w http.ResponseWriter, r *http.Request) {
	var body dto.CodeLoginRequest
	if !readJSON(w, r, &body) {
		return
	}
	if err := body.Validate(); err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
		return
	}

	h.loginVia(w, r, &authn.Request{
		Origin:   origin(r),
		RemoteIP: authn.ClientIP(r),
		Account:  body.Account,
		Code:     body.Code,
	}, authn.TagCode)
}

// LoginProfile maneja POST /v1/auth/login/profile (match exacto de perfil).
func (h *AuthHandler) LoginProfile(w http.ResponseWriter, r *http.Request) {
	var body dto.ProfileLoginRequest
	if !readJSON(w, r, &body) {
		return
	}
	if err := body.Validate(); err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
		return
	}

	dob, err := time.Parse("2006-01-02", body.DateOfBirth)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("date_of_birth must have format YYYY-MM-DD"))
		return
	}

	h.loginVia(w, r, &authn.Request{
		Origin:   origin(r),
		RemoteIP: authn.ClientIP(r),
		Profile: repository.ProfileQuery{
			FirstName:   body.FirstName,
			MiddleName:  body.MiddleName,
			LastName:    body.LastName,
			Suffix:      body.Suffix,
			DateOfBirth: &dob,
		},
	}, authn.TagProfile)
}

// LoginUuid maneja POST /v1/auth/login/uuid (user id directo). Pensado
// para integraciones confiables detrás del perímetro: no hay credencial
// que verificar, solo que el id exista y el usuario esté activo.
func (h *AuthHandler) LoginUuid(w http.ResponseWriter, r *http.Request) {
	var body dto.UuidLoginRequest
	if !readJSON(w, r, &body) {
		return
	}
	if err := body.Validate(); err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
		return
	}

	h.loginVia(w, r, &authn.Request{
		Origin:   origin(r),
		RemoteIP: authn.ClientIP(r),
		UserID:   body.UserID,
	}, authn.TagUuid)
}

// loginVia autentica con la estrategia del tag y abre sesión nueva.
func (h *AuthHandler) loginVia(w http.ResponseWriter, r *http.Request, req *authn.Request, tag authn.Tag) {
	id, err := h.Svc.Authenticate(r.Context(), req, tag)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}
	pair, err := h.Svc.StartSession(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}
	http.SetCookie(w, pair.Cookie.Cookie())
	writeJSON(w, http.StatusOK, dto.NewTokenResponse(pair))
}

// RequestCode maneja POST /v1/auth/code. Emite un código de un solo uso
// para la cuenta. Siempre responde 204 para no revelar si la cuenta
// existe; la entrega del código corre por un canal externo (acá solo se
// loguea en dev).
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var body dto.CodeRequest
	if !readJSON(w, r, &body) {
		return
	}
	if err := body.Validate(); err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
		return
	}

	code, err := h.Codes.Issue(r.Context(), body.Account, 0)
	if err != nil {
		logger.From(r.Context()).Error("issue one-time code failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
		return
	}
	logger.From(r.Context()).Debug("one-time code issued",
		logger.Account(util.MaskAccount(body.Account)),
		logger.String("code", code),
	)

	w.WriteHeader(http.StatusNoContent)
}

// Logout maneja POST /v1/auth/logout. Invalida todos los tokens del
// usuario y borra la cookie de refresh. Repetirlo sin tokens activos
// sigue siendo 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := middlewares.GetIdentity(r.Context())
	if id == nil || id.User == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	if err := h.Svc.Logout(r.Context(), id.User.ID); err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}
	http.SetCookie(w, ledger.DeletionCookie(h.CookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Refresh maneja POST /v1/auth/refresh. Rota el par completo a partir
// del refresh token de la cookie. Un refresh inválido o replayado
// responde 401 y borra la cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.originAllowed(r) {
		httperrors.WriteError(w, httperrors.ErrOriginNotAllowed)
		return
	}

	raw := ""
	if ck, err := r.Cookie(h.CookieName); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		raw = strings.TrimSpace(r.Header.Get("X-Refresh-Token"))
	}
	if raw == "" {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}

	pair, err := h.Svc.Refresh(r.Context(), raw)
	if err != nil {
		if repository.IsUnauthorized(err) {
			http.SetCookie(w, ledger.DeletionCookie(h.CookieName))
			httperrors.WriteError(w, httperrors.ErrTokenInvalid.WithCause(err))
			return
		}
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	http.SetCookie(w, pair.Cookie.Cookie())
	writeJSON(w, http.StatusOK, dto.NewTokenResponse(pair))
}

// Me maneja GET /v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middlewares.GetIdentity(r.Context())
	if id == nil || id.User == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewMeResponse(id.User, string(id.Strategy)))
}

func origin(r *http.Request) string {
	return strings.TrimRight(strings.TrimSpace(r.Header.Get("Origin")), "/")
}
