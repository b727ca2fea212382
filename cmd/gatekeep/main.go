// gatekeep es el servicio de seguridad de cuentas: emisión e
// invalidación de bearer tokens, estrategias de autenticación por ruta,
// resolución de permisos en tres niveles y rate limiting.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/gatekeep/internal/account"
	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/authz"
	"github.com/dropDatabas3/gatekeep/internal/cache"
	"github.com/dropDatabas3/gatekeep/internal/config"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	httpapi "github.com/dropDatabas3/gatekeep/internal/http"
	"github.com/dropDatabas3/gatekeep/internal/http/handlers"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
	"github.com/dropDatabas3/gatekeep/internal/observability/metrics"
	"github.com/dropDatabas3/gatekeep/internal/otp"
	"github.com/dropDatabas3/gatekeep/internal/rate"
	"github.com/dropDatabas3/gatekeep/internal/store/memory"
	"github.com/dropDatabas3/gatekeep/internal/store/pg"
	"github.com/dropDatabas3/gatekeep/internal/token"
)

var version = "dev"

func main() {
	var (
		flagEnvFile = flag.String("env-file", ".env", "ruta a .env (opcional)")
		flagConfig  = flag.String("config", "", "ruta a config.yaml")
	)
	flag.Parse()

	if *flagEnvFile != "" {
		_ = godotenv.Load(*flagEnvFile)
	}

	path := *flagConfig
	if path == "" {
		if fileExists("configs/config.yaml") {
			path = "configs/config.yaml"
		} else {
			path = "configs/config.example.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "gatekeep",
		Version:     version,
	})
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal("service exited", logger.Err(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.L()
	checks := make(map[string]handlers.Pinger)

	// Paso 1: storage
	var (
		users  repository.UserRepository
		tokens repository.TokenRepository
		perms  repository.PermissionRepository
	)
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MinIdleConns:    cfg.Storage.Postgres.MinIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer st.Close()
		users, tokens, perms = st, st, st
		checks["postgres"] = st
		log.Info("storage ready", logger.Component("pg"))
	case "memory":
		mem := memory.New()
		users, tokens, perms = mem, mem, mem
		log.Warn("using in-memory store, data will not survive a restart")
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	// Paso 2: cache + códigos de un solo uso
	cch, err := cache.New(cache.Config{
		Kind:   cfg.Cache.Kind,
		Addr:   cfg.Cache.Redis.Addr,
		DB:     cfg.Cache.Redis.DB,
		Prefix: cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cch.Close()
	checks["cache"] = cch

	otpTTL, _ := time.ParseDuration(cfg.OTP.TTL)
	codes := otp.New(cch, otpTTL)

	// Paso 3: rate limiters (redis si el cache es redis, memoria si no)
	loginIP := newLimiter(cfg, cfg.Rate.LoginIP.Limit, cfg.Rate.LoginIP.Window, "rl:login_ip:")
	loginUser := newLimiter(cfg, cfg.Rate.LoginUser.Limit, cfg.Rate.LoginUser.Window, "rl:login_user:")
	var accessIP rate.Limiter
	if cfg.Rate.Enabled {
		accessIP = newLimiter(cfg, cfg.Rate.AccessIP.Limit, cfg.Rate.AccessIP.Window, "rl:access_ip:")
	}

	// Paso 4: códecs y ledger
	accessSeed, err := decodeSeed(cfg.JWT.AccessSeed)
	if err != nil {
		return fmt.Errorf("jwt access seed: %w", err)
	}
	refreshSeed, err := decodeSeed(cfg.JWT.RefreshSeed)
	if err != nil {
		return fmt.Errorf("jwt refresh seed: %w", err)
	}
	if len(accessSeed) == 0 || len(refreshSeed) == 0 {
		log.Warn("jwt seeds not set, using ephemeral keys (tokens die on restart)")
	}
	accessCodec, err := token.New(cfg.JWT.Issuer, accessSeed, cfg.AccessTTL())
	if err != nil {
		return err
	}
	refreshCodec, err := token.New(cfg.JWT.Issuer, refreshSeed, cfg.RefreshTTL())
	if err != nil {
		return err
	}

	led := ledger.New(ledger.Deps{
		Tokens:     tokens,
		Access:     accessCodec,
		Refresh:    refreshCodec,
		CookieName: cfg.JWT.CookieName,
	})

	// Paso 5: estrategias, dispatcher, resolver, fachada
	disp, err := authn.NewDispatcher(cfg.Server.CORSAllowedOrigins,
		&authn.BearerStrategy{Users: users, Ledger: led, Access: accessCodec},
		&authn.PasswordStrategy{Users: users},
		&authn.CodeStrategy{Users: users, Codes: codes, LoginIP: loginIP, LoginUser: loginUser},
		&authn.UuidStrategy{Users: users},
		&authn.ProfileStrategy{Users: users},
		&authn.RefreshStrategy{Users: users, Ledger: led, Refresh: refreshCodec},
		&authn.PublicStrategy{},
	)
	if err != nil {
		return err
	}

	m := metrics.New()
	svc := account.New(account.Deps{
		Users:      users,
		Ledger:     led,
		Dispatcher: disp,
		Resolver:   authz.New(perms),
		LoginIP:    loginIP,
		LoginUser:  loginUser,
		Metrics:    m,
	})

	// Paso 6: router y servidor
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Svc:                svc,
		Codes:              codes,
		CookieName:         cfg.JWT.CookieName,
		AccessLimiter:      accessIP,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Origins:            disp,
		Metrics:            m,
		HealthChecks:       checks,
	})
	srv := httpapi.NewServer(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return httpapi.Shutdown(srv, 10*time.Second)
	})
	return g.Wait()
}

// newLimiter arma un limiter fixed-window. Con cache redis los
// contadores van a redis (compartidos entre réplicas); si no, memoria
// local del proceso.
func newLimiter(cfg *config.Config, points int, window string, prefix string) rate.Limiter {
	w, _ := time.ParseDuration(window)
	if cfg.Cache.Kind == "redis" {
		client := rdb.NewClient(&rdb.Options{
			Addr: cfg.Cache.Redis.Addr,
			DB:   cfg.Cache.Redis.DB,
		})
		return rate.NewRedis(client, cfg.Cache.Redis.Prefix+prefix, points, w)
	}
	return rate.NewMemory(points, w)
}

func decodeSeed(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
