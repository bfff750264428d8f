package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cliniga/cliniga-api/internal/model"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

const appointmentColumns = `
	id, patient_id, patient_name, doctor_id, doctor_name, specialization,
	date, time, status, notes, complaint, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.PatientName,
		appointment.DoctorID,
		appointment.DoctorName,
		appointment.Specialization,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.Notes,
		appointment.Complaint,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

// UpdateStatus guards the write with the expected prior status in the
// WHERE clause, the same compare-and-set the medical record path uses.
// Zero rows means a concurrent writer moved the appointment first.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + appointmentColumns

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, to, time.Now(), id, from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.conflictError(ctx, id, to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, date, timeOfDay string) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET date = $1, time = $2, status = $3, updated_at = $4
		WHERE id = $5 AND status IN ($6, $7)
		RETURNING ` + appointmentColumns

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query,
		date,
		timeOfDay,
		model.AppointmentStatusPending,
		time.Now(),
		id,
		model.AppointmentStatusPending,
		model.AppointmentStatusConfirmed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.conflictError(ctx, id, model.AppointmentStatusPending)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return &appointment, nil
}

// conflictError distinguishes a missing row from a guarded update that
// lost the race, reporting the status the appointment actually holds.
func (r *appointmentRepository) conflictError(ctx context.Context, id uuid.UUID, to model.AppointmentStatus) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return apperrors.InvalidTransition(string(current.Status), string(to))
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.UpcomingOnly {
			query += fmt.Sprintf(" AND date >= $%d AND status NOT IN ('cancelled', 'completed')", argCount)
			args = append(args, model.Today())
			argCount++
		}
	}

	query += " ORDER BY date ASC, time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
