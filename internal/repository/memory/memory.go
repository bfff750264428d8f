// Package memory provides an in-memory implementation of the
// repository interfaces, used for tests and demo deployments. All
// repositories share one Store so cross-entity writes commit under a
// single lock.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	usersByID        map[uuid.UUID]model.User
	userIDsByEmail   map[string]uuid.UUID
	profilesByID     map[uuid.UUID]model.DoctorProfile
	profileIDsByUser map[uuid.UUID]uuid.UUID
	appointmentsByID map[uuid.UUID]model.Appointment
	recordsByID      map[uuid.UUID]model.MedicalRecord
	recordIDsByAppt  map[uuid.UUID]uuid.UUID
	outboxByID       map[uuid.UUID]model.OutboxEvent
}

func NewStore() *Store {
	return &Store{
		usersByID:        make(map[uuid.UUID]model.User),
		userIDsByEmail:   make(map[string]uuid.UUID),
		profilesByID:     make(map[uuid.UUID]model.DoctorProfile),
		profileIDsByUser: make(map[uuid.UUID]uuid.UUID),
		appointmentsByID: make(map[uuid.UUID]model.Appointment),
		recordsByID:      make(map[uuid.UUID]model.MedicalRecord),
		recordIDsByAppt:  make(map[uuid.UUID]uuid.UUID),
		outboxByID:       make(map[uuid.UUID]model.OutboxEvent),
	}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) Doctors() repository.DoctorRepository {
	return &doctorRepository{store: s}
}

func (s *Store) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{store: s}
}

func (s *Store) MedicalRecords() repository.MedicalRecordRepository {
	return &medicalRecordRepository{store: s}
}

func (s *Store) Outbox() repository.OutboxRepository {
	return &outboxRepository{store: s}
}
