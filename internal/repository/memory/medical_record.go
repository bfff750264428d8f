package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cliniga/cliniga-api/internal/model"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

type medicalRecordRepository struct {
	store *Store
}

// Create inserts the record and moves the owning appointment from
// confirmed to completed inside a single critical section. A caller
// never observes the record without the completed appointment.
func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	appointment, ok := r.store.appointmentsByID[record.AppointmentID]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	if appointment.Status != model.AppointmentStatusConfirmed {
		return apperrors.InvalidState("appointment must be confirmed before a record can be added")
	}
	if _, ok := r.store.recordIDsByAppt[record.AppointmentID]; ok {
		return apperrors.InvalidState("appointment already has a medical record")
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.PatientID = appointment.PatientID
	record.DoctorID = appointment.DoctorID
	record.CreatedAt = time.Now()

	appointment.Status = model.AppointmentStatusCompleted
	appointment.UpdatedAt = record.CreatedAt

	r.store.recordsByID[record.ID] = *record
	r.store.recordIDsByAppt[record.AppointmentID] = record.ID
	r.store.appointmentsByID[appointment.ID] = appointment
	return nil
}

func (r *medicalRecordRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.MedicalRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.recordIDsByAppt[appointmentID]
	if !ok {
		return nil, apperrors.NotFound("medical record", nil)
	}
	record := r.store.recordsByID[id]
	return &record, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*model.MedicalRecord, 0)
	for id := range r.store.recordsByID {
		record := r.store.recordsByID[id]
		if record.PatientID == patientID {
			out = append(out, &record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
