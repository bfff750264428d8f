package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is written once, when the owning doctor completes a
// confirmed appointment, and is read-only afterwards.
type MedicalRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type CreateMedicalRecordRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required,uuid"`
	Diagnosis     string `json:"diagnosis" binding:"required,max=2000"`
	Notes         string `json:"notes" binding:"omitempty,max=5000"`
}
