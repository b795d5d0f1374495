package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jwalitptl/training-api/internal/email"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/auth"
	"github.com/jwalitptl/training-api/internal/service/notification"
	"github.com/jwalitptl/training-api/pkg/messaging"
	"github.com/jwalitptl/training-api/pkg/metrics"
)

// NotificationMailer turns broker events into mail: a copy of every
// announcement to its recipients and a welcome mail after signup.
type NotificationMailer struct {
	broker  messaging.Broker
	mailer  email.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewNotificationMailer(broker messaging.Broker, mailer email.Service, m *metrics.Metrics, logger *zap.Logger) *NotificationMailer {
	return &NotificationMailer{
		broker:  broker,
		mailer:  mailer,
		metrics: m,
		logger:  logger,
	}
}

// Run consumes both channels until ctx ends or the subscriptions close.
func (w *NotificationMailer) Run(ctx context.Context) error {
	channels := []string{messaging.ChannelAnnouncements, messaging.ChannelNotifications}

	var wg sync.WaitGroup
	for _, channel := range channels {
		msgs, err := w.broker.Subscribe(ctx, channel)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		wg.Add(1)
		go func(channel string, msgs <-chan []byte) {
			defer wg.Done()
			for data := range msgs {
				if err := w.Handle(ctx, data); err != nil {
					w.logger.Error("failed to handle event", zap.String("channel", channel), zap.Error(err))
				}
			}
		}(channel, msgs)
	}

	wg.Wait()
	return ctx.Err()
}

// Handle processes one raw broker message. Unknown types are skipped.
func (w *NotificationMailer) Handle(ctx context.Context, data []byte) error {
	msg, err := messaging.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	switch msg.Type {
	case notification.EventAnnouncementCreated:
		var event model.AnnouncementEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return fmt.Errorf("failed to decode announcement event: %w", err)
		}
		sent, err := w.mailer.SendAnnouncement(ctx, event.Recipients, event.Title, event.Content)
		w.count("sent", sent)
		if err != nil {
			w.count("failed", len(event.Recipients)-sent)
			return fmt.Errorf("announcement %s: %w", event.AnnouncementID, err)
		}
		w.logger.Info("announcement mailed",
			zap.String("announcement_id", event.AnnouncementID),
			zap.Int("recipients", sent),
		)

	case auth.EventUserRegistered:
		var event model.UserRegisteredEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return fmt.Errorf("failed to decode registration event: %w", err)
		}
		if err := w.mailer.SendWelcome(ctx, event.Email, event.Name); err != nil {
			w.count("failed", 1)
			return fmt.Errorf("welcome mail for %s: %w", event.UserID, err)
		}
		w.count("sent", 1)

	default:
		w.logger.Debug("skipping event", zap.String("type", msg.Type))
	}
	return nil
}

func (w *NotificationMailer) count(status string, n int) {
	if w.metrics == nil || n <= 0 {
		return
	}
	w.metrics.MailsSent.WithLabelValues(status).Add(float64(n))
}
