package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// Reschedulable reports whether the appointment may still be moved to
// a new slot; rescheduling always lands back on pending.
func (s AppointmentStatus) Reschedulable() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// Appointment carries denormalized name/specialization snapshots taken
// at booking time; later profile changes do not rewrite history.
type Appointment struct {
	Base
	PatientID      uuid.UUID         `db:"patient_id" json:"patient_id"`
	PatientName    string            `db:"patient_name" json:"patient_name"`
	DoctorID       uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	DoctorName     string            `db:"doctor_name" json:"doctor_name"`
	Specialization string            `db:"specialization" json:"specialization"`
	Date           string            `db:"date" json:"date"`
	Time           string            `db:"time" json:"time"`
	Status         AppointmentStatus `db:"status" json:"status"`
	Notes          string            `db:"notes" json:"notes,omitempty"`
	Complaint      string            `db:"complaint" json:"complaint,omitempty"`
}

type CreateAppointmentRequest struct {
	DoctorID  string `json:"doctor_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,slotdate"`
	Time      string `json:"time" binding:"required,slottime"`
	Complaint string `json:"complaint" binding:"omitempty,max=1000"`
}

// UpdateAppointmentRequest covers both status changes and reschedules;
// exactly one of the two shapes is expected per call.
type UpdateAppointmentRequest struct {
	Status *AppointmentStatus `json:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	Date   *string            `json:"date" binding:"omitempty,slotdate"`
	Time   *string            `json:"time" binding:"omitempty,slottime"`
}

type AppointmentFilters struct {
	PatientID    uuid.UUID
	DoctorID     uuid.UUID
	Status       AppointmentStatus
	UpcomingOnly bool
}

const (
	slotDateLayout = "2006-01-02"
	slotTimeLayout = "15:04"
)

// ParseSlot validates a (date, time) pair and returns the instant it
// denotes, in the server's local zone.
func ParseSlot(date, timeOfDay string) (time.Time, error) {
	if _, err := time.Parse(slotDateLayout, date); err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", date, err)
	}
	if _, err := time.Parse(slotTimeLayout, timeOfDay); err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM: %w", timeOfDay, err)
	}
	return time.ParseInLocation(slotDateLayout+" "+slotTimeLayout, date+" "+timeOfDay, time.Local)
}

// Today returns the current calendar date in slot format.
func Today() string {
	return time.Now().Format(slotDateLayout)
}

// Upcoming reports whether the appointment still counts toward a
// patient's or doctor's upcoming list.
func (a *Appointment) Upcoming(today string) bool {
	return a.Date >= today && !a.Status.Terminal()
}
