package medical

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository"
	apperrors "github.com/cliniga/cliniga-api/pkg/errors"
)

type Service struct {
	repo            repository.MedicalRecordRepository
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	outboxRepo      repository.OutboxRepository
}

func NewService(
	repo repository.MedicalRecordRepository,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	outboxRepo repository.OutboxRepository,
) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		outboxRepo:      outboxRepo,
	}
}

// CreateRecord writes the diagnosis for a confirmed appointment and
// completes it. The repository commits both writes atomically; this
// layer owns actor authorization and input validation.
func (s *Service) CreateRecord(ctx context.Context, actor model.Actor, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	if actor.Role != model.RoleDoctor {
		return nil, apperrors.Forbidden("only doctors can create medical records")
	}

	if strings.TrimSpace(req.Diagnosis) == "" {
		return nil, apperrors.Validation("diagnosis must not be empty")
	}

	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid appointment ID", err)
	}

	appointment, err := s.appointmentRepo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	profile, err := s.doctorRepo.GetProfileByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if appointment.DoctorID != profile.ID {
		return nil, apperrors.Forbidden("appointment belongs to another doctor")
	}

	record := &model.MedicalRecord{
		AppointmentID: appointmentID,
		Diagnosis:     strings.TrimSpace(req.Diagnosis),
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	appointment.Status = model.AppointmentStatusCompleted
	s.emitCompleted(ctx, appointment)
	return record, nil
}

func (s *Service) GetByAppointment(ctx context.Context, actor model.Actor, appointmentID uuid.UUID) (*model.MedicalRecord, error) {
	record, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, actor, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListForPatient returns the acting patient's own records.
func (s *Service) ListForPatient(ctx context.Context, actor model.Actor) ([]*model.MedicalRecord, error) {
	if actor.Role != model.RolePatient {
		return nil, apperrors.Forbidden("only patients can list their medical records")
	}
	return s.repo.ListByPatient(ctx, actor.UserID)
}

func (s *Service) checkAccess(ctx context.Context, actor model.Actor, record *model.MedicalRecord) error {
	switch actor.Role {
	case model.RolePatient:
		if record.PatientID == actor.UserID {
			return nil
		}
	case model.RoleDoctor:
		profile, err := s.doctorRepo.GetProfileByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if record.DoctorID == profile.ID {
			return nil
		}
	}
	return apperrors.Forbidden("medical record belongs to another patient or doctor")
}

func (s *Service) emitCompleted(ctx context.Context, appointment *model.Appointment) {
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
		log.Error().Err(err).Msg("failed to marshal completion event")
		return
	}
	event := &model.OutboxEvent{
		EventType: model.EventAppointmentCompleted,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		log.Error().Err(err).Msg("failed to enqueue completion event")
	}
}
