package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/utils"
)

// UserRepo keeps accounts in memory.  Emails are normalised to lower
// case and are unique.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[uint64]model.User
	byEmail map[string]uint64
	nextID  uint64
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: map[uint64]model.User{}, byEmail: map[string]uint64{}, nextID: 1}
}

// Create hashes the password with the given bcrypt cost, inserts the user
// and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return 0, ErrEmailExists
	}
	id := r.nextID
	r.nextID++
	r.byID[id] = model.User{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Theme:        model.ThemeLight,
		CreatedAt:    time.Now().UTC(),
	}
	r.byEmail[email] = id
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// SetTheme stores the user's display preference.
func (r *UserRepo) SetTheme(ctx context.Context, id uint64, theme model.Theme) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Theme = theme
	r.byID[id] = u
	return nil
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
