package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

const (
	cacheTTL        = 5 * time.Minute
	cacheSweep      = 10 * time.Minute
	doctorListKey   = "doctors:all"
	doctorKeyPrefix = "doctor:"
)

// Service serves the doctor directory. Listings and profile reads go
// through a TTL cache that profile updates invalidate.
type Service struct {
	repo  repository.DoctorRepository
	cache *gocache.Cache
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(cacheTTL, cacheSweep),
	}
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.DoctorProfile, error) {
	if cached, ok := s.cache.Get(doctorListKey); ok {
		return cached.([]*model.DoctorProfile), nil
	}

	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(doctorListKey, profiles, gocache.DefaultExpiration)
	return profiles, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	key := doctorKeyPrefix + id.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.DoctorProfile), nil
	}

	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, profile, gocache.DefaultExpiration)
	return profile, nil
}

func (s *Service) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	return s.repo.GetProfileByUserID(ctx, userID)
}

// UpdateProfile applies partial updates to the actor's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actor model.Actor, req *model.UpdateDoctorProfileRequest) (*model.DoctorProfile, error) {
	if actor.Role != model.RoleDoctor {
		return nil, apperrors.Forbidden("only doctors can update a doctor profile")
	}

	profile, err := s.repo.GetProfileByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Specialization != nil {
		profile.Specialization = *req.Specialization
	}
	if req.Schedule != nil {
		profile.Schedule = *req.Schedule
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.ImageURL != nil {
		profile.ImageURL = *req.ImageURL
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.cache.Delete(doctorListKey)
	s.cache.Delete(doctorKeyPrefix + profile.ID.String())
	return profile, nil
}
