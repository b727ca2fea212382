// Package otp implementa el store de códigos de verificación de un
// solo uso sobre el cache (memory o redis).
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dropDatabas3/gatekeep/internal/cache"
)

const codeDigits = 6

// Store guarda códigos hasheados por cuenta, con TTL.
// Un código se consume (borra) tras el primer uso exitoso.
type Store struct {
	Cache      cache.Client
	DefaultTTL time.Duration
}

// New crea un store de códigos sobre el cache dado.
func New(c cache.Client, defaultTTL time.Duration) *Store {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &Store{Cache: c, DefaultTTL: defaultTTL}
}

func key(account string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(account))
}

func hash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Issue genera un código numérico de 6 dígitos y lo guarda hasheado.
// Emitir un código nuevo pisa el anterior de la misma cuenta.
func (s *Store) Issue(ctx context.Context, account string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.DefaultTTL
	}
	code, err := randomCode(codeDigits)
	if err != nil {
		return "", err
	}
	if err := s.Cache.Set(ctx, key(account), hash(code), ttl); err != nil {
		return "", err
	}
	return code, nil
}

// IsValid indica si hay un código vigente que coincida con el enviado.
func (s *Store) IsValid(ctx context.Context, account, code string) (bool, error) {
	stored, err := s.Cache.Get(ctx, key(account))
	if cache.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == hash(strings.TrimSpace(code)), nil
}

// Consume borra el código de la cuenta tras un uso exitoso.
func (s *Store) Consume(ctx context.Context, account, _ string) error {
	return s.Cache.Delete(ctx, key(account))
}

func randomCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
