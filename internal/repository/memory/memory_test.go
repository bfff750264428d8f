package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniga/cliniga-api/internal/model"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

func TestUserEmailUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := &model.User{Email: "Alice@Example.com", Name: "Alice", Role: model.RolePatient}
	require.NoError(t, store.Users().Create(ctx, first))
	assert.Equal(t, "alice@example.com", first.Email)

	second := &model.User{Email: "alice@example.com", Name: "Other Alice", Role: model.RolePatient}
	err := store.Users().Create(ctx, second)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrDuplicateEmail, appErr.Code)

	got, err := store.Users().GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestDoctorProfileUniquePerUser(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &model.User{Email: "grey@example.com", Name: "Dr. Grey", Role: model.RoleDoctor}
	require.NoError(t, store.Users().Create(ctx, user))

	require.NoError(t, store.Doctors().CreateProfile(ctx, &model.DoctorProfile{UserID: user.ID, Name: user.Name}))

	err := store.Doctors().CreateProfile(ctx, &model.DoctorProfile{UserID: user.ID, Name: user.Name})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrDuplicateProfile, appErr.Code)
}

func TestAppointmentListOrderingAndFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	patientID := uuid.New()
	doctorID := uuid.New()

	yesterday := time.Now().Add(-24 * time.Hour).Format("2006-01-02")
	tomorrow := time.Now().Add(24 * time.Hour).Format("2006-01-02")
	nextWeek := time.Now().Add(7 * 24 * time.Hour).Format("2006-01-02")

	for _, a := range []*model.Appointment{
		{PatientID: patientID, DoctorID: doctorID, Date: nextWeek, Time: "09:00", Status: model.AppointmentStatusPending},
		{PatientID: patientID, DoctorID: doctorID, Date: tomorrow, Time: "14:00", Status: model.AppointmentStatusConfirmed},
		{PatientID: patientID, DoctorID: doctorID, Date: tomorrow, Time: "09:00", Status: model.AppointmentStatusCancelled},
		{PatientID: patientID, DoctorID: doctorID, Date: yesterday, Time: "09:00", Status: model.AppointmentStatusCompleted},
		{PatientID: uuid.New(), DoctorID: doctorID, Date: tomorrow, Time: "11:00", Status: model.AppointmentStatusPending},
	} {
		require.NoError(t, store.Appointments().Create(ctx, a))
	}

	all, err := store.Appointments().List(ctx, &model.AppointmentFilters{PatientID: patientID})
	require.NoError(t, err)
	require.Len(t, all, 4)
	// Ordered by date then time.
	assert.Equal(t, yesterday, all[0].Date)
	assert.Equal(t, "09:00", all[1].Time)
	assert.Equal(t, "14:00", all[2].Time)
	assert.Equal(t, nextWeek, all[3].Date)

	upcoming, err := store.Appointments().List(ctx, &model.AppointmentFilters{PatientID: patientID, UpcomingOnly: true})
	require.NoError(t, err)
	require.Len(t, upcoming, 2, "cancelled, completed and past appointments drop out")
	for _, a := range upcoming {
		assert.False(t, a.Status.Terminal())
	}

	byDoctor, err := store.Appointments().List(ctx, &model.AppointmentFilters{DoctorID: doctorID})
	require.NoError(t, err)
	assert.Len(t, byDoctor, 5)

	confirmed, err := store.Appointments().List(ctx, &model.AppointmentFilters{Status: model.AppointmentStatusConfirmed})
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)
}

func TestMedicalRecordCreateCompletesAtomically(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	appt := &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      "2030-05-01",
		Time:      "10:00",
		Status:    model.AppointmentStatusConfirmed,
	}
	require.NoError(t, store.Appointments().Create(ctx, appt))

	record := &model.MedicalRecord{AppointmentID: appt.ID, Diagnosis: "seasonal allergy"}
	require.NoError(t, store.MedicalRecords().Create(ctx, record))

	assert.Equal(t, appt.PatientID, record.PatientID, "ids are copied from the appointment")
	assert.Equal(t, appt.DoctorID, record.DoctorID)

	got, err := store.Appointments().Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, got.Status)
}

func TestMedicalRecordCreateGuards(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	pending := &model.Appointment{PatientID: uuid.New(), DoctorID: uuid.New(), Date: "2030-05-01", Time: "10:00", Status: model.AppointmentStatusPending}
	require.NoError(t, store.Appointments().Create(ctx, pending))

	err := store.MedicalRecords().Create(ctx, &model.MedicalRecord{AppointmentID: pending.ID, Diagnosis: "x"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidState, appErr.Code)

	err = store.MedicalRecords().Create(ctx, &model.MedicalRecord{AppointmentID: uuid.New(), Diagnosis: "x"})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

// Only one of two concurrent record writes for the same confirmed
// appointment may win.
func TestConcurrentRecordCreation(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	appt := &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      "2030-05-01",
		Time:      "10:00",
		Status:    model.AppointmentStatusConfirmed,
	}
	require.NoError(t, store.Appointments().Create(ctx, appt))

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.MedicalRecords().Create(ctx, &model.MedicalRecord{
				AppointmentID: appt.ID,
				Diagnosis:     "race entry",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	got, err := store.Appointments().Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, got.Status)
}

func TestUpdateStatusChecksPriorStatus(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	appt := &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      "2030-05-01",
		Time:      "10:00",
		Status:    model.AppointmentStatusPending,
	}
	require.NoError(t, store.Appointments().Create(ctx, appt))

	_, err := store.Appointments().UpdateStatus(ctx, appt.ID, model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidTransition, appErr.Code, "stored status is pending, not confirmed")

	updated, err := store.Appointments().UpdateStatus(ctx, appt.ID, model.AppointmentStatusPending, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, updated.Status)

	_, err = store.Appointments().UpdateStatus(ctx, appt.ID, model.AppointmentStatusPending, model.AppointmentStatusConfirmed)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidTransition, appErr.Code)

	_, err = store.Appointments().Reschedule(ctx, appt.ID, "2030-06-01", "09:00")
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidTransition, appErr.Code, "cancelled appointments cannot be rescheduled")

	_, err = store.Appointments().UpdateStatus(ctx, uuid.New(), model.AppointmentStatusPending, model.AppointmentStatusCancelled)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

// Two writers race the same pending appointment toward different
// statuses; the status re-check under the write lock lets exactly one
// win, so the loser cannot drag the appointment back out of a
// terminal state.
func TestConcurrentStatusWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	appt := &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      "2030-05-01",
		Time:      "10:00",
		Status:    model.AppointmentStatusPending,
	}
	require.NoError(t, store.Appointments().Create(ctx, appt))

	targets := []model.AppointmentStatus{
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
	}
	var wg sync.WaitGroup
	errs := make([]error, len(targets))
	for i, to := range targets {
		wg.Add(1)
		go func(i int, to model.AppointmentStatus) {
			defer wg.Done()
			_, errs[i] = store.Appointments().UpdateStatus(ctx, appt.ID, model.AppointmentStatusPending, to)
		}(i, to)
	}
	wg.Wait()

	var winner model.AppointmentStatus
	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			winner = targets[i]
		}
	}
	require.Equal(t, 1, succeeded, "only one writer may move the appointment out of pending")

	got, err := store.Appointments().Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, got.Status)
}

func TestOutboxLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	event := &model.OutboxEvent{EventType: model.EventAppointmentCreated, Payload: []byte(`{}`)}
	require.NoError(t, store.Outbox().Create(ctx, event))

	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.OutboxStatusPending, pending[0].Status)

	require.NoError(t, store.Outbox().MarkProcessed(ctx, event.ID))
	pending, err = store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	second := &model.OutboxEvent{EventType: model.EventAppointmentCancelled, Payload: []byte(`{}`)}
	require.NoError(t, store.Outbox().Create(ctx, second))
	require.NoError(t, store.Outbox().MarkFailed(ctx, second.ID, "broker down"))

	pending, err = store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed events wait for retry, they are not pending")
}
