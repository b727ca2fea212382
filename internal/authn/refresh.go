package authn

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/gatekeep/internal/audit"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
	"github.com/dropDatabas3/gatekeep/internal/token"
)

// RefreshStrategy valida el refresh token persistido en la cookie.
//
// Un refresh token vencido o deslistado visto en el wild se trata como
// señal de replay: se invalida la sesión COMPLETA del usuario antes de
// fallar, no solo ese token.
type RefreshStrategy struct {
	Users   repository.UserRepository
	Ledger  *ledger.Ledger
	Refresh *token.Codec
}

func (s *RefreshStrategy) Tag() Tag { return TagRefresh }

func (s *RefreshStrategy) Authenticate(ctx context.Context, req *Request) (*Identity, error) {
	if req.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing refresh token", repository.ErrUnauthorized)
	}

	claims, err := s.Refresh.Verify(req.RefreshToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			// Decodificar el payload igual para matar la sesión entera.
			if dec, derr := s.Refresh.Decode(req.RefreshToken); derr == nil && dec.UserID != "" {
				if ierr := s.Ledger.InvalidateAll(ctx, dec.UserID); ierr != nil {
					return nil, ierr
				}
				audit.Log(ctx, audit.EventReplayDetected,
					logger.UserID(dec.UserID), logger.String("reason", "expired"))
				logger.From(ctx).Warn("expired refresh token seen, session invalidated",
					logger.Component("authn.refresh"), logger.UserID(dec.UserID))
			}
			return nil, fmt.Errorf("%w: refresh token expired", repository.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: bad refresh token", repository.ErrUnauthorized)
	}

	live, err := s.Ledger.IsLive(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !live {
		// Firma válida pero fila borrada: token ya deslogueado siendo
		// rejugado. Mismo camino: invalidar y fallar.
		if ierr := s.Ledger.InvalidateAll(ctx, claims.UserID); ierr != nil {
			return nil, ierr
		}
		audit.Log(ctx, audit.EventReplayDetected,
			logger.UserID(claims.UserID), logger.String("reason", "delisted"))
		logger.From(ctx).Warn("delisted refresh token replayed, session invalidated",
			logger.Component("authn.refresh"), logger.UserID(claims.UserID))
		return nil, fmt.Errorf("%w: refresh token revoked", repository.ErrUnauthorized)
	}

	user, err := s.Users.FindByID(ctx, claims.UserID)
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: unknown user", repository.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, fmt.Errorf("%w: user inactive", repository.ErrUnauthorized)
	}

	return &Identity{User: user, Strategy: TagRefresh, Subject: claims.Subject}, nil
}
