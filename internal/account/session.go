package account

import (
	"context"

	"github.com/dropDatabas3/gatekeep/internal/audit"
	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
)

// Logout invalida todos los tokens del usuario. Repetirlo, incluso sin
// tokens activos, nunca falla: borrar cero filas no es error.
func (s *service) Logout(ctx context.Context, userID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("account.session"),
		logger.Op("Logout"),
		logger.UserID(userID),
	)
	if err := s.deps.Ledger.InvalidateAll(ctx, userID); err != nil {
		return err
	}
	audit.Log(ctx, audit.EventLogout, logger.UserID(userID))
	log.Info("logout")
	return nil
}

// StartSession emite un par nuevo para una identidad ya autenticada por
// alguna estrategia (code, profile, uuid). Igual que el login por
// password: invalidar-antes-de-emitir.
func (s *service) StartSession(ctx context.Context, id *authn.Identity) (*ledger.Pair, error) {
	if id == nil || id.User == nil {
		return nil, repository.ErrUnauthorized
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("account.session"),
		logger.Op("StartSession"),
		logger.UserID(id.User.ID),
		logger.Strategy(string(id.Strategy)),
	)

	subject := id.Subject
	if subject == "" {
		if id.User.Email != nil {
			subject = *id.User.Email
		} else {
			subject = id.User.ID
		}
	}

	if err := s.deps.Ledger.InvalidateAll(ctx, id.User.ID); err != nil {
		return nil, err
	}
	pair, err := s.deps.Ledger.IssuePair(ctx, id.User.ID, subject, 0)
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.IncLogin("ok")
	audit.Log(ctx, audit.EventLogin,
		logger.UserID(id.User.ID),
		logger.Strategy(string(id.Strategy)),
	)
	log.Info("session started")
	return pair, nil
}

// Refresh rota el par completo a partir del refresh token persistido.
// La detección de replay (vencido-pero-visto, deslistado) vive en la
// estrategia: acá solo se delega y, con identidad válida, se rota.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*ledger.Pair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("account.session"),
		logger.Op("Refresh"),
	)

	id, err := s.deps.Dispatcher.Select(authn.TagRefresh).Authenticate(ctx, &authn.Request{RefreshToken: refreshToken})
	if err != nil {
		if repository.IsUnauthorized(err) {
			s.deps.Metrics.IncRefresh("unauthorized")
		} else {
			s.deps.Metrics.IncRefresh("error")
		}
		return nil, err
	}

	log = log.With(logger.UserID(id.User.ID))

	// Rotación: el par viejo muere antes de emitir el nuevo.
	if err := s.deps.Ledger.InvalidateAll(ctx, id.User.ID); err != nil {
		s.deps.Metrics.IncRefresh("error")
		return nil, err
	}
	pair, err := s.deps.Ledger.IssuePair(ctx, id.User.ID, id.Subject, 0)
	if err != nil {
		s.deps.Metrics.IncRefresh("error")
		return nil, err
	}

	s.deps.Metrics.IncRefresh("ok")
	audit.Log(ctx, audit.EventRefreshRotated, logger.UserID(id.User.ID))
	log.Info("refresh rotated")
	return pair, nil
}
