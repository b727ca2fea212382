package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/gatekeep/internal/audit"
	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
	"github.com/dropDatabas3/gatekeep/internal/rate"
	"github.com/dropDatabas3/gatekeep/internal/security/password"
	"github.com/dropDatabas3/gatekeep/internal/util"
)

// Errores de login. Envuelven los sentinels del dominio para que la
// capa HTTP mapee status sin conocer cada variante.
var (
	ErrMissingFields   = fmt.Errorf("missing required fields: %w", repository.ErrUnauthorized)
	ErrAccountNotFound = fmt.Errorf("account not found: %w", repository.ErrNotFound)
	ErrNoPassword      = fmt.Errorf("account has no password: %w", repository.ErrUnauthorized)
	ErrWrongCredential = fmt.Errorf("wrong credential: %w", repository.ErrUnauthorized)
	ErrUserDisabled    = fmt.Errorf("user disabled: %w", repository.ErrUnauthorized)
	ErrTooManyAttempts = fmt.Errorf("too many attempts: %w", repository.ErrForbidden)
)

func (s *service) Login(ctx context.Context, in LoginInput) (*ledger.Pair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("account.login"),
		logger.Op("Login"),
	)

	// Paso 0: normalización
	in.Account = strings.TrimSpace(strings.ToLower(in.Account))
	if in.Account == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	// Paso 1: rate limit por IP (antes de tocar el store)
	if in.RemoteIP != "" {
		if _, err := s.deps.LoginIP.Consume(ctx, in.RemoteIP); err != nil {
			if errors.Is(err, rate.ErrRateExceeded) {
				s.deps.Metrics.IncLogin("rate_limited")
				s.deps.Metrics.IncRateLimited("login_ip")
				log.Info("login throttled by ip", logger.ClientIP(in.RemoteIP))
				return nil, ErrTooManyAttempts
			}
			return nil, err
		}
	}

	// Paso 2: resolver cuenta. Solo el login explícito distingue
	// NotFound; la validación de tokens nunca lo hace.
	user, err := s.deps.Users.FindByAccount(ctx, in.Account)
	if repository.IsNotFound(err) {
		s.deps.Metrics.IncLogin("not_found")
		log.Debug("account not found", logger.Account(util.MaskAccount(in.Account)))
		return nil, ErrAccountNotFound
	}
	if err != nil {
		s.deps.Metrics.IncLogin("error")
		return nil, err
	}

	log = log.With(logger.UserID(user.ID))

	// Paso 3: rate limit por usuario
	if _, err := s.deps.LoginUser.Consume(ctx, user.ID); err != nil {
		if errors.Is(err, rate.ErrRateExceeded) {
			s.deps.Metrics.IncLogin("rate_limited")
			s.deps.Metrics.IncRateLimited("login_user")
			log.Info("login throttled by user")
			return nil, ErrTooManyAttempts
		}
		return nil, err
	}

	// Paso 4: estado y password
	if !user.Active() {
		s.deps.Metrics.IncLogin("disabled")
		log.Info("user disabled")
		return nil, ErrUserDisabled
	}
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		s.deps.Metrics.IncLogin("no_password")
		log.Debug("account has no password set")
		return nil, ErrNoPassword
	}
	if !password.Verify(in.Password, *user.PasswordHash) {
		s.deps.Metrics.IncLogin("wrong_credential")
		log.Debug("password check failed")
		return nil, ErrWrongCredential
	}

	// Paso 5: éxito. Limpiar SOLO el contador de intentos del usuario;
	// el contador por IP se mantiene (throttling de IP sobrevive al
	// éxito de una cuenta puntual).
	_ = s.deps.LoginUser.Reset(ctx, user.ID)

	if err := s.deps.Users.TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn("touch last login failed", logger.Err(err))
	}

	// Paso 6: invalidar-antes-de-emitir. A lo sumo un par vivo por
	// usuario; un crash entre ambos pasos deja cero tokens (fallo
	// seguro, re-login).
	if err := s.deps.Ledger.InvalidateAll(ctx, user.ID); err != nil {
		s.deps.Metrics.IncLogin("error")
		return nil, err
	}
	pair, err := s.deps.Ledger.IssuePair(ctx, user.ID, in.Account, 0)
	if err != nil {
		s.deps.Metrics.IncLogin("error")
		return nil, err
	}

	s.deps.Metrics.IncLogin("ok")
	audit.Log(ctx, audit.EventLogin,
		logger.UserID(user.ID),
		logger.Strategy(string(authn.TagPassword)),
	)
	log.Info("login successful")
	return pair, nil
}
