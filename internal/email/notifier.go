package email

import (
	"context"
	"encoding/json"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository"
	"github.com/cliniga/cliniga-api/pkg/logger"
	"github.com/cliniga/cliniga-api/pkg/messaging"
	"github.com/cliniga/cliniga-api/pkg/metrics"
)

// Notifier consumes appointment lifecycle events from the broker and
// emails the affected patient. A missed message means a missed email,
// nothing more; the booking record itself is never at risk.
type Notifier struct {
	broker  messaging.Broker
	email   Service
	users   repository.UserRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewNotifier(
	broker messaging.Broker,
	email Service,
	users repository.UserRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Notifier {
	return &Notifier{
		broker:  broker,
		email:   email,
		users:   users,
		logger:  logger,
		metrics: metrics,
	}
}

// Start subscribes to the notifiable event channels and blocks until
// the context is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	channels := []string{
		model.EventAppointmentConfirmed,
		model.EventAppointmentCancelled,
		model.EventAppointmentRescheduled,
	}

	for _, channel := range channels {
		msgs, err := n.broker.Subscribe(ctx, channel)
		if err != nil {
			return err
		}
		go n.consume(ctx, channel, msgs)
	}

	n.logger.Info("notifier started", "channels", len(channels))
	<-ctx.Done()
	return nil
}

func (n *Notifier) consume(ctx context.Context, channel string, msgs <-chan []byte) {
	for msg := range msgs {
		if err := n.handle(ctx, channel, msg); err != nil {
			n.metrics.NotificationsFailed.WithLabelValues(channel).Inc()
			n.logger.Error(err, "failed to send notification", "event_type", channel)
			continue
		}
		n.metrics.NotificationsSent.WithLabelValues(channel).Inc()
	}
}

func (n *Notifier) handle(ctx context.Context, channel string, msg []byte) error {
	var event model.AppointmentEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	patient, err := n.users.Get(ctx, event.PatientID)
	if err != nil {
		return err
	}

	switch channel {
	case model.EventAppointmentConfirmed:
		return n.email.SendAppointmentConfirmed(ctx, patient.Email, &event)
	case model.EventAppointmentCancelled:
		return n.email.SendAppointmentCancelled(ctx, patient.Email, &event)
	case model.EventAppointmentRescheduled:
		return n.email.SendAppointmentRescheduled(ctx, patient.Email, &event)
	}
	return nil
}
