package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository/memory"
	"github.com/cliniga/cliniga-api/pkg/auth"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	jwtSvc := auth.NewJWTService("test-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	return NewService(store.Users(), store.Doctors(), jwtSvc), store
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestRegisterPatient(t *testing.T) {
	svc, _ := newService(t)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
		Role:     model.RolePatient,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email, "emails are stored lowercased")
	assert.Equal(t, model.RolePatient, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestRegisterDoctorCreatesProfile(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Name:           "Dr. Grey",
		Email:          "grey@example.com",
		Password:       "secret123",
		Role:           model.RoleDoctor,
		Specialization: "Cardiology",
		Schedule:       "Mon-Wed 8:00-14:00",
	})
	require.NoError(t, err)

	profile, err := store.Doctors().GetProfileByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", profile.Specialization)
	assert.Equal(t, "Mon-Wed 8:00-14:00", profile.Schedule)
	assert.Equal(t, user.Name, profile.Name)
}

func TestRegisterDoctorProfileDefaults(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Dr. Shepherd",
		Email:    "shepherd@example.com",
		Password: "secret123",
		Role:     model.RoleDoctor,
	})
	require.NoError(t, err)

	profile, err := store.Doctors().GetProfileByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSpecialization, profile.Specialization)
	assert.Equal(t, model.DefaultSchedule, profile.Schedule)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := &model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     model.RolePatient,
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	// Same address with different casing still collides.
	req.Email = "ALICE@example.com"
	_, err = svc.Register(ctx, req)
	assertCode(t, err, apperrors.ErrDuplicateEmail)
}

func TestRegisterInvalidRole(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "secret123",
		Role:     "admin",
	})
	assertCode(t, err, apperrors.ErrValidation)
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     model.RolePatient,
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, model.RolePatient, resp.Role)

	claims, err := svc.ValidateToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, model.RolePatient, claims.Role)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     model.RolePatient,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assertCode(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assertCode(t, err, apperrors.ErrInvalidCredentials)

	// Claiming the wrong role looks identical to a bad password.
	_, err = svc.Login(ctx, &model.LoginRequest{Email: "alice@example.com", Password: "secret123", Role: model.RoleDoctor})
	assertCode(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     model.RolePatient,
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	tokens, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	_, err = svc.RefreshToken(ctx, "not-a-token")
	assertCode(t, err, apperrors.ErrUnauthorized)

	// An access token is signed with the wrong secret for refresh.
	_, err = svc.RefreshToken(ctx, resp.AccessToken)
	assertCode(t, err, apperrors.ErrUnauthorized)
}
