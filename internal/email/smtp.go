package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/cliniga/cliniga-api/internal/config"
	"github.com/cliniga/cliniga-api/internal/model"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAppointmentConfirmed(ctx context.Context, to string, event *model.AppointmentEvent) error {
	subject, body := confirmedBody(event)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) SendAppointmentCancelled(ctx context.Context, to string, event *model.AppointmentEvent) error {
	subject, body := cancelledBody(event)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) SendAppointmentRescheduled(ctx context.Context, to string, event *model.AppointmentEvent) error {
	subject, body := rescheduledBody(event)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
