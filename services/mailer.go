package services

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/teamsales/salesportal/logger"
)

// Mailer delivers transactional email.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// SMTPMailer sends mail through an SMTP relay with gomail.
type SMTPMailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	if m.Host == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Återställ ditt lösenord")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Hej!</p><p>Klicka på länken nedan för att välja ett nytt lösenord:</p><p><a href="%s">Återställ lösenord</a></p><p>Har du inte bett om detta kan du ignorera mejlet.</p>`,
		link))

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.Get("audit").WithField("to", maskEmail(email)).Info("password reset email sent")
	return nil
}

// maskEmail partially masks an email address for logs.
func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	name := parts[0]
	if len(name) <= 2 {
		return name + "***@" + parts[1]
	}
	return name[:2] + "***@" + parts[1]
}
