package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cliniga/cliniga-api/internal/model"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

// Create inserts the record and completes the owning appointment in
// one transaction. The status guard in the UPDATE's WHERE clause makes
// the confirmed-to-completed transition safe under concurrent writers.
func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := r.createInTx(ctx, tx, record); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *medicalRecordRepository) createInTx(ctx context.Context, tx *sqlx.Tx, record *model.MedicalRecord) error {
	var appointment model.Appointment
	err := tx.GetContext(ctx, &appointment,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`,
		record.AppointmentID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		model.AppointmentStatusCompleted,
		time.Now(),
		record.AppointmentID,
		model.AppointmentStatusConfirmed,
	)
	if err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.InvalidState("appointment must be confirmed before a record can be added")
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.PatientID = appointment.PatientID
	record.DoctorID = appointment.DoctorID
	record.CreatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO medical_records (
			id, appointment_id, patient_id, doctor_id, diagnosis, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		record.ID,
		record.AppointmentID,
		record.PatientID,
		record.DoctorID,
		record.Diagnosis,
		record.Notes,
		record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return apperrors.InvalidState("appointment already has a medical record")
		}
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.MedicalRecord, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, diagnosis, notes, created_at
		FROM medical_records
		WHERE appointment_id = $1
	`
	var record model.MedicalRecord
	err := r.db.GetContext(ctx, &record, query, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("medical record", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, diagnosis, notes, created_at
		FROM medical_records
		WHERE patient_id = $1
		ORDER BY created_at ASC
	`
	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}
