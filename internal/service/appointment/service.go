package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

// Service is the sole authority over the appointment lifecycle. Every
// mutation re-derives legality from the transition table and verifies
// that the actor owns the appointment.
type Service struct {
	repo       repository.AppointmentRepository
	userRepo   repository.UserRepository
	doctorRepo repository.DoctorRepository
	outboxRepo repository.OutboxRepository
}

func NewService(
	repo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	outboxRepo repository.OutboxRepository,
) *Service {
	return &Service{
		repo:       repo,
		userRepo:   userRepo,
		doctorRepo: doctorRepo,
		outboxRepo: outboxRepo,
	}
}

// Create books a new appointment for the acting patient. Names and
// specialization are snapshotted from the identity store so later
// profile edits do not rewrite booking history.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if actor.Role != model.RolePatient {
		return nil, apperrors.Forbidden("only patients can book appointments")
	}

	patient, err := s.userRepo.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid doctor ID", err)
	}
	doctor, err := s.doctorRepo.GetProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if err := validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		PatientID:      patient.ID,
		PatientName:    patient.Name,
		DoctorID:       doctor.ID,
		DoctorName:     doctor.Name,
		Specialization: doctor.Specialization,
		Date:           req.Date,
		Time:           req.Time,
		Status:         model.AppointmentStatusPending,
		Complaint:      req.Complaint,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.emitEvent(ctx, model.EventAppointmentCreated, appointment)
	return appointment, nil
}

func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, actor, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// UpdateStatus applies a status transition on behalf of the actor.
// Moving to completed is rejected here: the only path to completed is
// medical record creation, which commits both writes atomically.
func (s *Service) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, newStatus model.AppointmentStatus) (*model.Appointment, error) {
	if !newStatus.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown status %q", newStatus))
	}

	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(ctx, actor, appointment); err != nil {
		return nil, err
	}

	if newStatus == model.AppointmentStatusCompleted {
		return nil, apperrors.InvalidState("appointments are completed by adding a medical record")
	}

	if !transitionAllowed(appointment.Status, newStatus, actor.Role) {
		if transitionExists(appointment.Status, newStatus) {
			return nil, apperrors.Forbidden(fmt.Sprintf("%s may not perform this transition", actor.Role))
		}
		return nil, apperrors.InvalidTransition(string(appointment.Status), string(newStatus))
	}

	// The repository re-checks the prior status on write, so a
	// transition validated against this snapshot cannot clobber a
	// concurrent one.
	appointment, err = s.repo.UpdateStatus(ctx, id, appointment.Status, newStatus)
	if err != nil {
		return nil, err
	}

	switch newStatus {
	case model.AppointmentStatusConfirmed:
		s.emitEvent(ctx, model.EventAppointmentConfirmed, appointment)
	case model.AppointmentStatusCancelled:
		s.emitEvent(ctx, model.EventAppointmentCancelled, appointment)
	}
	return appointment, nil
}

// Reschedule moves a pending or confirmed appointment to a new future
// slot and resets it to pending, forcing the doctor to reconfirm.
func (s *Service) Reschedule(ctx context.Context, actor model.Actor, id uuid.UUID, newDate, newTime string) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != model.RolePatient || appointment.PatientID != actor.UserID {
		return nil, apperrors.Forbidden("only the booking patient can reschedule an appointment")
	}

	if !appointment.Status.Reschedulable() {
		return nil, apperrors.InvalidTransition(string(appointment.Status), string(model.AppointmentStatusPending))
	}

	if err := validateSlot(newDate, newTime); err != nil {
		return nil, err
	}

	appointment, err = s.repo.Reschedule(ctx, id, newDate, newTime)
	if err != nil {
		return nil, err
	}

	s.emitEvent(ctx, model.EventAppointmentRescheduled, appointment)
	return appointment, nil
}

// List returns the actor's own appointments; patients see their
// bookings, doctors the appointments on their profile.
func (s *Service) List(ctx context.Context, actor model.Actor, upcomingOnly bool) ([]*model.Appointment, error) {
	filters := &model.AppointmentFilters{UpcomingOnly: upcomingOnly}

	switch actor.Role {
	case model.RolePatient:
		filters.PatientID = actor.UserID
	case model.RoleDoctor:
		profile, err := s.doctorRepo.GetProfileByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		filters.DoctorID = profile.ID
	default:
		return nil, apperrors.Forbidden("unknown role")
	}

	return s.repo.List(ctx, filters)
}

// checkOwnership rejects actors who are neither the booking patient
// nor the doctor on the appointment's profile.
func (s *Service) checkOwnership(ctx context.Context, actor model.Actor, appointment *model.Appointment) error {
	switch actor.Role {
	case model.RolePatient:
		if appointment.PatientID == actor.UserID {
			return nil
		}
	case model.RoleDoctor:
		profile, err := s.doctorRepo.GetProfileByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if appointment.DoctorID == profile.ID {
			return nil
		}
	}
	return apperrors.Forbidden("appointment belongs to another patient or doctor")
}

func validateSlot(date, timeOfDay string) error {
	instant, err := model.ParseSlot(date, timeOfDay)
	if err != nil {
		return apperrors.InvalidSlot(err.Error())
	}
	if instant.Before(time.Now()) {
		return apperrors.InvalidSlot("appointment slot must be in the future")
	}
	return nil
}

func transitionExists(from, to model.AppointmentStatus) bool {
	return transitionAllowed(from, to, model.RoleDoctor) || transitionAllowed(from, to, model.RolePatient)
}

// emitEvent appends a lifecycle event to the outbox. Event loss is
// tolerated; delivery failures must not fail the booking operation.
func (s *Service) emitEvent(ctx context.Context, eventType string, appointment *model.Appointment) {
	payload, err := json.Marshal(model.AppointmentEvent{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		PatientName:   appointment.PatientName,
		DoctorID:      appointment.DoctorID,
		DoctorName:    appointment.DoctorName,
		Date:          appointment.Date,
		Time:          appointment.Time,
		Status:        appointment.Status,
	})
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal appointment event")
		return
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to enqueue appointment event")
	}
}
