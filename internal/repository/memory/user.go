package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliniga/cliniga-api/internal/model"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.userIDsByEmail[email]; ok {
		return apperrors.DuplicateEmail(email)
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = email
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.store.usersByID[user.ID] = *user
	r.store.userIDsByEmail[email] = user.ID
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.usersByID[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.userIDsByEmail[email]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	user := r.store.usersByID[id]
	return &user, nil
}
