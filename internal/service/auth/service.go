package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository"
	"github.com/cliniga/cliniga-api/pkg/auth"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

const bcryptCost = 12

type Service struct {
	userRepo   repository.UserRepository
	doctorRepo repository.DoctorRepository
	jwtSvc     auth.JWTService
}

func NewService(userRepo repository.UserRepository, doctorRepo repository.DoctorRepository, jwtSvc auth.JWTService) *Service {
	return &Service{
		userRepo:   userRepo,
		doctorRepo: doctorRepo,
		jwtSvc:     jwtSvc,
	}
}

// Register creates a user; doctor registrations also get a profile,
// falling back to default specialization/schedule when none supplied.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, apperrors.Validation("role must be patient or doctor")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashedPassword),
		Name:         req.Name,
		Role:         req.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if req.Role == model.RoleDoctor {
		profile := &model.DoctorProfile{
			UserID:         user.ID,
			Name:           user.Name,
			Specialization: req.Specialization,
			Schedule:       req.Schedule,
		}
		if profile.Specialization == "" {
			profile.Specialization = model.DefaultSpecialization
		}
		if profile.Schedule == "" {
			profile.Schedule = model.DefaultSchedule
		}
		if err := s.doctorRepo.CreateProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create doctor profile: %w", err)
		}
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	// A role claim that does not match the account is treated like a
	// bad password, not a hint that the account exists.
	if req.Role != "" && req.Role != user.Role {
		return nil, apperrors.InvalidCredentials()
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &model.LoginResponse{
		UserSummary:   user.Summary(),
		TokenResponse: *tokens,
	}, nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	return s.generateTokens(user)
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.BadRequest("invalid user ID", err)
	}
	return s.userRepo.Get(ctx, userID)
}

func (s *Service) generateTokens(user *model.User) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
