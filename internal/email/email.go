package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/careflowhq/careflow-api/internal/config"
)

// Service sends transactional mail. Only password resets use it today.
type Service interface {
	SendPasswordReset(to, resetToken string) error
}

type service struct {
	cfg config.SMTPConfig
}

func NewService(cfg config.SMTPConfig) Service {
	return &service{cfg: cfg}
}

func (s *service) SendPasswordReset(to, resetToken string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "CareFlow password reset")
	m.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset token: %s\n\n"+
			"The token expires in one hour. If you did not request this, ignore this mail.",
		resetToken,
	))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}
