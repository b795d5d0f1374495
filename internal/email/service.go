// Package email delivers notification mail over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/training-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, email string, name string) error
	// SendAnnouncement mails one copy per recipient and reports how many
	// were accepted by the server.
	SendAnnouncement(ctx context.Context, recipients []string, title string, content string) (int, error)
}

type SMTPService struct {
	from string
	dial func() (gomail.SendCloser, error)
}

func NewSMTPService(cfg config.SMTPConfig) *SMTPService {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPService{
		from: cfg.From,
		dial: d.Dial,
	}
}

func (s *SMTPService) message(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

func (s *SMTPService) SendWelcome(ctx context.Context, email string, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sc, err := s.dial()
	if err != nil {
		return fmt.Errorf("failed to dial smtp: %w", err)
	}
	defer sc.Close()

	body := fmt.Sprintf("Hi %s,\n\nWelcome aboard. Your account is ready and you can start enrolling in courses and events right away.\n", name)
	if err := gomail.Send(sc, s.message(email, "Welcome to the training platform", body)); err != nil {
		return fmt.Errorf("failed to send welcome mail: %w", err)
	}
	return nil
}

// SendAnnouncement reuses one SMTP connection. A failed recipient does not
// stop the rest; the errors are joined.
func (s *SMTPService) SendAnnouncement(ctx context.Context, recipients []string, title string, content string) (int, error) {
	if len(recipients) == 0 {
		return 0, nil
	}
	sc, err := s.dial()
	if err != nil {
		return 0, fmt.Errorf("failed to dial smtp: %w", err)
	}
	defer sc.Close()

	sent := 0
	var errs []error
	for _, to := range recipients {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := gomail.Send(sc, s.message(to, title, content)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
