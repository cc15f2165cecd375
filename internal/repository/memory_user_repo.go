package repository

import (
	"context"
	"strings"
	"sync"

	"go-auth-api/internal/model"
)

// MemoryUserRepository is an in-memory user store with the same
// semantics as the Postgres repository, including the case-insensitive
// uniqueness constraint. It backs tests that do not need a database.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]model.User{}}
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[normalize(username)]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[normalize(username)]
	return ok, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(u.Username)
	if _, ok := r.users[key]; ok {
		return model.ErrUserAlreadyExists
	}
	r.users[key] = u
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, u := range r.users {
		if u.ID == id {
			delete(r.users, key)
			return nil
		}
	}
	return model.ErrUserNotFound
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
