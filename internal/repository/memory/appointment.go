package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cliniga/cliniga-api/internal/model"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

type appointmentRepository struct {
	store *Store
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	r.store.appointmentsByID[appointment.ID] = *appointment
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	appointment, ok := r.store.appointmentsByID[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return &appointment, nil
}

// UpdateStatus re-checks the stored status under the write lock so a
// transition validated against a stale snapshot cannot land on top of
// a concurrent write.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.appointmentsByID[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	if existing.Status != from {
		return nil, apperrors.InvalidTransition(string(existing.Status), string(to))
	}
	existing.Status = to
	existing.UpdatedAt = time.Now()

	r.store.appointmentsByID[id] = existing
	return &existing, nil
}

func (r *appointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, date, timeOfDay string) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.appointmentsByID[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	if !existing.Status.Reschedulable() {
		return nil, apperrors.InvalidTransition(string(existing.Status), string(model.AppointmentStatusPending))
	}
	existing.Date = date
	existing.Time = timeOfDay
	existing.Status = model.AppointmentStatusPending
	existing.UpdatedAt = time.Now()

	r.store.appointmentsByID[id] = existing
	return &existing, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	today := model.Today()
	out := make([]*model.Appointment, 0)
	for id := range r.store.appointmentsByID {
		appointment := r.store.appointmentsByID[id]
		if filters != nil {
			if filters.PatientID != uuid.Nil && appointment.PatientID != filters.PatientID {
				continue
			}
			if filters.DoctorID != uuid.Nil && appointment.DoctorID != filters.DoctorID {
				continue
			}
			if filters.Status != "" && appointment.Status != filters.Status {
				continue
			}
			if filters.UpcomingOnly && !appointment.Upcoming(today) {
				continue
			}
		}
		out = append(out, &appointment)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}
