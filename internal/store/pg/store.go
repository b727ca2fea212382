// Package pg implementa los repositorios del dominio sobre PostgreSQL
// (pgx/v5). Todo error del driver que no sea "no rows" se reporta como
// repository.ErrStoreUnavailable: el caller decide, nunca deny silencioso.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store agrupa los repositorios pg sobre un pool compartido.
type Store struct{ pool *pgxpool.Pool }

// Tuning son los knobs opcionales del pool.
type Tuning struct {
	MaxOpenConns    int
	MinIdleConns    int
	ConnMaxLifetime string
}

// New abre el pool y lo deja listo.
func New(ctx context.Context, dsn string, t Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if t.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(t.MaxOpenConns)
	}
	if t.MinIdleConns > 0 {
		pcfg.MinConns = int32(t.MinIdleConns)
	}
	if t.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(t.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", repository.ErrStoreUnavailable, err)
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (métricas/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Ping verifica la conexión (readiness).
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return repository.ErrStoreUnavailable
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrStoreUnavailable, err)
	}
	return nil
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// wrapErr traduce errores del driver a los sentinels del dominio.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return fmt.Errorf("%w: %v", repository.ErrStoreUnavailable, err)
}
