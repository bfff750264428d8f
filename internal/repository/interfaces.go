package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/cliniga/cliniga-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository is the identity store: users plus doctor profiles.
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	DoctorRepository interface {
		CreateProfile(ctx context.Context, profile *model.DoctorProfile) error
		GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
		GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error)
		UpdateProfile(ctx context.Context, profile *model.DoctorProfile) error
		ListProfiles(ctx context.Context) ([]*model.DoctorProfile, error)
	}

	// AppointmentRepository exposes status mutation only as guarded
	// writes: UpdateStatus commits iff the stored status still equals
	// from, Reschedule iff the appointment is still reschedulable. Both
	// fail with InvalidTransition when a concurrent writer got there
	// first, so a terminal status can never be overwritten.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error)
		Reschedule(ctx context.Context, id uuid.UUID, date, timeOfDay string) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	// MedicalRecordRepository owns the record-create + appointment-complete
	// pair: Create must commit both writes atomically or neither.
	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.MedicalRecord, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	}
)
