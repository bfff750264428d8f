package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cliniga/cliniga-api/internal/model"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

type doctorRepository struct {
	store *Store
}

func (r *doctorRepository) CreateProfile(ctx context.Context, profile *model.DoctorProfile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.profileIDsByUser[profile.UserID]; ok {
		return apperrors.DuplicateProfile(profile.UserID.String())
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	r.store.profilesByID[profile.ID] = *profile
	r.store.profileIDsByUser[profile.UserID] = profile.ID
	return nil
}

func (r *doctorRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	profile, ok := r.store.profilesByID[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return &profile, nil
}

func (r *doctorRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.profileIDsByUser[userID]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	profile := r.store.profilesByID[id]
	return &profile, nil
}

func (r *doctorRepository) UpdateProfile(ctx context.Context, profile *model.DoctorProfile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.profilesByID[profile.ID]
	if !ok {
		return apperrors.NotFound("doctor", nil)
	}
	profile.UserID = existing.UserID
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = time.Now()

	r.store.profilesByID[profile.ID] = *profile
	return nil
}

func (r *doctorRepository) ListProfiles(ctx context.Context) ([]*model.DoctorProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*model.DoctorProfile, 0, len(r.store.profilesByID))
	for id := range r.store.profilesByID {
		profile := r.store.profilesByID[id]
		out = append(out, &profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
