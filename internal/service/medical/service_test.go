package medical

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository/memory"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

type fixture struct {
	svc         *Service
	store       *memory.Store
	patient     model.Actor
	doctor      model.Actor
	otherDoctor model.Actor
	appointment *model.Appointment
}

// newFixture seeds a patient, two doctors and one appointment booked
// with the first doctor in the given status.
func newFixture(t *testing.T, status model.AppointmentStatus) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	patient := &model.User{Email: "alice@example.com", Name: "Alice", Role: model.RolePatient}
	require.NoError(t, store.Users().Create(ctx, patient))

	doctorUser := &model.User{Email: "dr.grey@example.com", Name: "Dr. Grey", Role: model.RoleDoctor}
	require.NoError(t, store.Users().Create(ctx, doctorUser))
	profile := &model.DoctorProfile{UserID: doctorUser.ID, Name: doctorUser.Name, Specialization: "Cardiology"}
	require.NoError(t, store.Doctors().CreateProfile(ctx, profile))

	otherDoctorUser := &model.User{Email: "dr.shepherd@example.com", Name: "Dr. Shepherd", Role: model.RoleDoctor}
	require.NoError(t, store.Users().Create(ctx, otherDoctorUser))
	otherProfile := &model.DoctorProfile{UserID: otherDoctorUser.ID, Name: otherDoctorUser.Name, Specialization: "Neurology"}
	require.NoError(t, store.Doctors().CreateProfile(ctx, otherProfile))

	appointment := &model.Appointment{
		PatientID:      patient.ID,
		PatientName:    patient.Name,
		DoctorID:       profile.ID,
		DoctorName:     profile.Name,
		Specialization: profile.Specialization,
		Date:           time.Now().Add(48 * time.Hour).Format("2006-01-02"),
		Time:           "10:00",
		Status:         status,
	}
	require.NoError(t, store.Appointments().Create(ctx, appointment))

	svc := NewService(store.MedicalRecords(), store.Appointments(), store.Doctors(), store.Outbox())

	return &fixture{
		svc:         svc,
		store:       store,
		patient:     model.Actor{UserID: patient.ID, Email: patient.Email, Role: model.RolePatient},
		doctor:      model.Actor{UserID: doctorUser.ID, Email: doctorUser.Email, Role: model.RoleDoctor},
		otherDoctor: model.Actor{UserID: otherDoctorUser.ID, Email: otherDoctorUser.Email, Role: model.RoleDoctor},
		appointment: appointment,
	}
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateRecordCompletesAppointment(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	ctx := context.Background()

	record, err := f.svc.CreateRecord(ctx, f.doctor, &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "tension headache",
		Notes:         "advised rest and hydration",
	})
	require.NoError(t, err)

	assert.Equal(t, f.appointment.ID, record.AppointmentID)
	assert.Equal(t, f.patient.UserID, record.PatientID)
	assert.Equal(t, f.appointment.DoctorID, record.DoctorID)

	appt, err := f.store.Appointments().Get(ctx, f.appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, appt.Status)
}

func TestCreateRecordPatientForbidden(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	_, err := f.svc.CreateRecord(context.Background(), f.patient, &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "self diagnosis",
	})
	assertCode(t, err, apperrors.ErrForbidden)
}

func TestCreateRecordWrongDoctor(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	_, err := f.svc.CreateRecord(context.Background(), f.otherDoctor, &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "tension headache",
	})
	assertCode(t, err, apperrors.ErrForbidden)
}

func TestCreateRecordRequiresConfirmed(t *testing.T) {
	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusCompleted,
	} {
		f := newFixture(t, status)
		_, err := f.svc.CreateRecord(context.Background(), f.doctor, &model.CreateMedicalRecordRequest{
			AppointmentID: f.appointment.ID.String(),
			Diagnosis:     "tension headache",
		})
		assertCode(t, err, apperrors.ErrInvalidState)
	}
}

func TestCreateRecordLeavesNoPartialState(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusPending)
	ctx := context.Background()

	_, err := f.svc.CreateRecord(ctx, f.doctor, &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "tension headache",
	})
	assertCode(t, err, apperrors.ErrInvalidState)

	appt, err := f.store.Appointments().Get(ctx, f.appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, appt.Status, "failed record write must not touch the appointment")

	_, err = f.store.MedicalRecords().GetByAppointment(ctx, f.appointment.ID)
	assertCode(t, err, apperrors.ErrNotFound)
}

func TestCreateRecordRejectsSecondRecord(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	ctx := context.Background()

	req := &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "tension headache",
	}
	_, err := f.svc.CreateRecord(ctx, f.doctor, req)
	require.NoError(t, err)

	_, err = f.svc.CreateRecord(ctx, f.doctor, req)
	assertCode(t, err, apperrors.ErrInvalidState)
}

func TestCreateRecordEmptyDiagnosis(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	_, err := f.svc.CreateRecord(context.Background(), f.doctor, &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "   ",
	})
	assertCode(t, err, apperrors.ErrValidation)
}

func TestCreateRecordUnknownAppointment(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	_, err := f.svc.CreateRecord(context.Background(), f.doctor, &model.CreateMedicalRecordRequest{
		AppointmentID: uuid.NewString(),
		Diagnosis:     "tension headache",
	})
	assertCode(t, err, apperrors.ErrNotFound)
}

func TestGetByAppointmentAccess(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	ctx := context.Background()

	_, err := f.svc.CreateRecord(ctx, f.doctor, &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "tension headache",
	})
	require.NoError(t, err)

	record, err := f.svc.GetByAppointment(ctx, f.patient, f.appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "tension headache", record.Diagnosis)

	record, err = f.svc.GetByAppointment(ctx, f.doctor, f.appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "tension headache", record.Diagnosis)

	_, err = f.svc.GetByAppointment(ctx, f.otherDoctor, f.appointment.ID)
	assertCode(t, err, apperrors.ErrForbidden)
}

func TestListForPatient(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	ctx := context.Background()

	_, err := f.svc.CreateRecord(ctx, f.doctor, &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "tension headache",
	})
	require.NoError(t, err)

	records, err := f.svc.ListForPatient(ctx, f.patient)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, f.patient.UserID, records[0].PatientID)

	_, err = f.svc.ListForPatient(ctx, f.doctor)
	assertCode(t, err, apperrors.ErrForbidden)
}

func TestCompletionEventEmitted(t *testing.T) {
	f := newFixture(t, model.AppointmentStatusConfirmed)
	ctx := context.Background()

	_, err := f.svc.CreateRecord(ctx, f.doctor, &model.CreateMedicalRecordRequest{
		AppointmentID: f.appointment.ID.String(),
		Diagnosis:     "tension headache",
	})
	require.NoError(t, err)

	events, err := f.store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentCompleted, events[0].EventType)
}
