package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/movieranker/movieranker-backend/config"
	"github.com/movieranker/movieranker-backend/pkg/logger"
)

// SMTPSender delivers mail through a plain SMTP relay (STARTTLS via net/smtp)
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	logger.Debug("Sending email", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})

	msg := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"%s",
		s.fromName, s.from, to, subject, htmlBody,
	)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := s.host + ":" + s.port

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

// LogSender logs instead of sending. Used in development when no SMTP
// credentials are configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(to, subject, htmlBody string) error {
	logger.Info("[DEV MODE] Email not sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
		"body":    htmlBody,
	})
	return nil
}
