package email

import (
	"context"
	"fmt"

	"github.com/cliniga/cliniga-api/internal/model"
)

type Service interface {
	SendAppointmentConfirmed(ctx context.Context, to string, event *model.AppointmentEvent) error
	SendAppointmentCancelled(ctx context.Context, to string, event *model.AppointmentEvent) error
	SendAppointmentRescheduled(ctx context.Context, to string, event *model.AppointmentEvent) error
}

func confirmedBody(event *model.AppointmentEvent) (subject, body string) {
	subject = "Your appointment is confirmed"
	body = fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s on %s at %s has been confirmed.\n\nSee you then,\nCliniga",
		event.PatientName, event.DoctorName, event.Date, event.Time)
	return
}

func cancelledBody(event *model.AppointmentEvent) (subject, body string) {
	subject = "Your appointment was cancelled"
	body = fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s on %s at %s has been cancelled.\n\nYou can book a new slot any time.\n\nCliniga",
		event.PatientName, event.DoctorName, event.Date, event.Time)
	return
}

func rescheduledBody(event *model.AppointmentEvent) (subject, body string) {
	subject = "Your appointment was rescheduled"
	body = fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s has been moved to %s at %s and is awaiting confirmation.\n\nCliniga",
		event.PatientName, event.DoctorName, event.Date, event.Time)
	return
}
