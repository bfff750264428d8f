package model

import "github.com/google/uuid"

// Defaults applied when a doctor registers without profile details.
const (
	DefaultSpecialization = "General Physician"
	DefaultSchedule       = "Mon-Fri 9:00-17:00"
)

type DoctorProfile struct {
	Base
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	Schedule       string    `db:"schedule" json:"schedule"`
	Bio            string    `db:"bio" json:"bio,omitempty"`
	ImageURL       string    `db:"image_url" json:"image_url,omitempty"`
}

type UpdateDoctorProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=100"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	Schedule       *string `json:"schedule" binding:"omitempty,max=200"`
	Bio            *string `json:"bio" binding:"omitempty,max=2000"`
	ImageURL       *string `json:"image_url" binding:"omitempty,url"`
}
