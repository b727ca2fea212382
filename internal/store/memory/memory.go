// Package memory implementa los repositorios del dominio en memoria.
// Lo usan los tests y el modo dev sin base de datos.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	"github.com/google/uuid"
)

// Store implementa UserRepository, TokenRepository y PermissionRepository.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*repository.User
	tokens map[string]repository.Token
	perms  []repository.Permission
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		users:  make(map[string]*repository.User),
		tokens: make(map[string]repository.Token),
	}
}

// ---------- seed helpers (tests / modo dev) ----------

// PutUser agrega o reemplaza un usuario. Con ID vacío genera uno.
func (s *Store) PutUser(u repository.User) repository.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = repository.UserActive
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := u
	s.users[u.ID] = &cp
	return u
}

// Grant agrega un permiso.
func (s *Store) Grant(p repository.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.perms = append(s.perms, p)
}

// TokenCount retorna cuántas filas de token hay para el usuario.
func (s *Store) TokenCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func clone(u *repository.User) *repository.User {
	cp := *u
	cp.RoleIDs = append([]string(nil), u.RoleIDs...)
	return &cp
}

// ---------- UserRepository ----------

func (s *Store) FindByID(_ context.Context, id string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (s *Store) FindByAccount(_ context.Context, account string) (*repository.User, error) {
	account = strings.TrimSpace(account)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := uuid.Parse(account); err == nil {
		if u, ok := s.users[account]; ok {
			return clone(u), nil
		}
	}
	for _, u := range s.users {
		if u.Email != nil && strings.EqualFold(*u.Email, account) {
			return clone(u), nil
		}
	}
	for _, u := range s.users {
		if u.Phone != nil && *u.Phone == account {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) FindByProfile(_ context.Context, q repository.ProfileQuery) ([]repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []repository.User
	for _, u := range s.users {
		if !strings.EqualFold(u.FirstName, q.FirstName) || !strings.EqualFold(u.LastName, q.LastName) {
			continue
		}
		if q.DateOfBirth == nil || u.DateOfBirth == nil || !sameDate(*u.DateOfBirth, *q.DateOfBirth) {
			continue
		}
		if q.MiddleName != "" && !strings.EqualFold(u.MiddleName, q.MiddleName) {
			continue
		}
		if q.Suffix != "" && !strings.EqualFold(u.Suffix, q.Suffix) {
			continue
		}
		out = append(out, *clone(u))
	}
	return out, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *Store) TouchLastLogin(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = &newHash
	return nil
}

// ---------- TokenRepository ----------

func (s *Store) Create(_ context.Context, t repository.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[t.Token]; exists {
		return repository.ErrConflict
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *Store) DeleteAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, k)
		}
	}
	return nil
}

func (s *Store) ExistsByToken(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok, nil
}

// ---------- PermissionRepository ----------

func (s *Store) FindByTrustee(_ context.Context, t repository.TrusteeType, trusteeIDs []string) ([]repository.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{}, len(trusteeIDs))
	for _, id := range trusteeIDs {
		ids[id] = struct{}{}
	}
	var out []repository.Permission
	for _, p := range s.perms {
		if p.Trustee != t {
			continue
		}
		if _, ok := ids[p.TrusteeID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
