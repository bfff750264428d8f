// Package seed populates the stores with deterministic sample data
// for demos and tests.
package seed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository"
)

// DefaultPassword is the credential for every seeded account.
const DefaultPassword = "cliniga123"

type doctorFixture struct {
	name           string
	email          string
	specialization string
	schedule       string
	bio            string
}

type patientFixture struct {
	name  string
	email string
}

var doctorFixtures = []doctorFixture{
	{"Dr. Aisha Rahman", "aisha.rahman@cliniga.test", "Cardiology", "Mon-Fri 8:00-14:00", "Interventional cardiologist with 12 years of practice."},
	{"Dr. Tomas Keller", "tomas.keller@cliniga.test", "Dermatology", "Tue-Sat 10:00-18:00", "Specialist in chronic skin conditions."},
	{"Dr. Priya Nair", "priya.nair@cliniga.test", "Pediatrics", "Mon-Fri 9:00-17:00", "Pediatrician focused on early development."},
	{"Dr. Samuel Osei", "samuel.osei@cliniga.test", "Orthopedics", "Mon-Thu 7:30-15:30", "Sports injury and joint replacement surgeon."},
	{"Dr. Elena Vasquez", "elena.vasquez@cliniga.test", model.DefaultSpecialization, model.DefaultSchedule, ""},
}

var patientFixtures = []patientFixture{
	{"Jordan Lee", "jordan.lee@cliniga.test"},
	{"Mina Park", "mina.park@cliniga.test"},
}

type Result struct {
	Doctors      []*model.DoctorProfile
	Patients     []*model.User
	Appointments []*model.Appointment
}

// Load inserts the fixture set. It is not idempotent; call it against
// an empty store only.
func Load(ctx context.Context, users repository.UserRepository, doctors repository.DoctorRepository, appointments repository.AppointmentRepository) (*Result, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	result := &Result{}

	for _, fixture := range doctorFixtures {
		user := &model.User{
			Email:        fixture.email,
			PasswordHash: string(hash),
			Name:         fixture.name,
			Role:         model.RoleDoctor,
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to seed doctor user %s: %w", fixture.email, err)
		}

		profile := &model.DoctorProfile{
			UserID:         user.ID,
			Name:           fixture.name,
			Specialization: fixture.specialization,
			Schedule:       fixture.schedule,
			Bio:            fixture.bio,
		}
		if err := doctors.CreateProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to seed doctor profile %s: %w", fixture.email, err)
		}
		result.Doctors = append(result.Doctors, profile)
	}

	for _, fixture := range patientFixtures {
		user := &model.User{
			Email:        fixture.email,
			PasswordHash: string(hash),
			Name:         fixture.name,
			Role:         model.RolePatient,
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to seed patient %s: %w", fixture.email, err)
		}
		result.Patients = append(result.Patients, user)
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	nextWeek := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	fixtures := []*model.Appointment{
		{
			PatientID:      result.Patients[0].ID,
			PatientName:    result.Patients[0].Name,
			DoctorID:       result.Doctors[0].ID,
			DoctorName:     result.Doctors[0].Name,
			Specialization: result.Doctors[0].Specialization,
			Date:           tomorrow,
			Time:           "09:00",
			Status:         model.AppointmentStatusPending,
			Complaint:      "Chest discomfort during exercise",
		},
		{
			PatientID:      result.Patients[0].ID,
			PatientName:    result.Patients[0].Name,
			DoctorID:       result.Doctors[1].ID,
			DoctorName:     result.Doctors[1].Name,
			Specialization: result.Doctors[1].Specialization,
			Date:           nextWeek,
			Time:           "11:30",
			Status:         model.AppointmentStatusConfirmed,
			Complaint:      "Recurring rash on forearm",
		},
		{
			PatientID:      result.Patients[1].ID,
			PatientName:    result.Patients[1].Name,
			DoctorID:       result.Doctors[2].ID,
			DoctorName:     result.Doctors[2].Name,
			Specialization: result.Doctors[2].Specialization,
			Date:           tomorrow,
			Time:           "14:00",
			Status:         model.AppointmentStatusCancelled,
			Complaint:      "Routine checkup",
		},
	}

	for _, appointment := range fixtures {
		if err := appointments.Create(ctx, appointment); err != nil {
			return nil, fmt.Errorf("failed to seed appointment: %w", err)
		}
		result.Appointments = append(result.Appointments, appointment)
	}

	return result, nil
}
