package handlers

import (
	"net/http"

	"github.com/dropDatabas3/gatekeep/internal/account"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/http/dto"
	httperrors "github.com/dropDatabas3/gatekeep/internal/http/errors"
	"github.com/dropDatabas3/gatekeep/internal/http/middlewares"
)

// AuthzHandler expone la resolución de permisos de la identidad actual.
type AuthzHandler struct {
	Svc account.Service
}

// Check maneja POST /v1/authz/check: responde si la identidad del
// request tiene el grant (resource, action). La ausencia de grant es
// denegación, no error.
func (h *AuthzHandler) Check(w http.ResponseWriter, r *http.Request) {
	id := middlewares.GetIdentity(r.Context())
	if id == nil || id.User == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var body dto.AuthzCheckRequest
	if !readJSON(w, r, &body) {
		return
	}
	if err := body.Validate(); err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
		return
	}

	ok, err := h.Svc.Authorize(r.Context(), id, body.Resource, repository.Action(body.Action))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDomain(err))
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthzCheckResponse{
		Resource: body.Resource,
		Action:   body.Action,
		Allowed:  ok,
	})
}
