package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository/memory"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

func setup(t *testing.T) (*Service, *memory.Store, *model.DoctorProfile) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	user := &model.User{Email: "grey@example.com", Name: "Dr. Grey", Role: model.RoleDoctor}
	require.NoError(t, store.Users().Create(ctx, user))

	profile := &model.DoctorProfile{
		UserID:         user.ID,
		Name:           user.Name,
		Specialization: "Cardiology",
		Schedule:       model.DefaultSchedule,
	}
	require.NoError(t, store.Doctors().CreateProfile(ctx, profile))

	return NewService(store.Doctors()), store, profile
}

func TestListDoctors(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	user := &model.User{Email: "shepherd@example.com", Name: "Dr. Shepherd", Role: model.RoleDoctor}
	require.NoError(t, store.Users().Create(ctx, user))
	require.NoError(t, store.Doctors().CreateProfile(ctx, &model.DoctorProfile{
		UserID: user.ID, Name: user.Name, Specialization: "Neurology",
	}))

	doctors, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 2)
}

func TestGetDoctor(t *testing.T) {
	svc, _, profile := setup(t)
	ctx := context.Background()

	got, err := svc.GetDoctor(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", got.Specialization)

	// Second read is served from cache.
	got, err = svc.GetDoctor(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, profile := setup(t)
	ctx := context.Background()
	actor := model.Actor{UserID: profile.UserID, Role: model.RoleDoctor}

	spec := "Interventional Cardiology"
	bio := "20 years of practice"
	updated, err := svc.UpdateProfile(ctx, actor, &model.UpdateDoctorProfileRequest{
		Specialization: &spec,
		Bio:            &bio,
	})
	require.NoError(t, err)
	assert.Equal(t, spec, updated.Specialization)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, "Dr. Grey", updated.Name, "unset fields stay untouched")

	// Cache was invalidated, the fresh profile is visible.
	got, err := svc.GetDoctor(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, spec, got.Specialization)
}

func TestUpdateProfileRejectsPatients(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	patient := &model.User{Email: "alice@example.com", Name: "Alice", Role: model.RolePatient}
	require.NoError(t, store.Users().Create(ctx, patient))

	name := "Dr. Alice"
	_, err := svc.UpdateProfile(ctx, model.Actor{UserID: patient.ID, Role: model.RolePatient}, &model.UpdateDoctorProfileRequest{Name: &name})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestUpdateProfileInvalidatesListCache(t *testing.T) {
	svc, _, profile := setup(t)
	ctx := context.Background()

	before, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)

	spec := "Pediatric Cardiology"
	_, err = svc.UpdateProfile(ctx, model.Actor{UserID: profile.UserID, Role: model.RoleDoctor}, &model.UpdateDoctorProfileRequest{Specialization: &spec})
	require.NoError(t, err)

	after, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, spec, after[0].Specialization)
}
