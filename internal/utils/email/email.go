package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/fraudsight/transaction-service/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether SMTP delivery is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.AlertEmail != ""
}

// SendHighRiskAlert sends the periodic sweep summary to the risk desk.
func (s *Sender) SendHighRiskAlert(suspiciousCount int64, totalAmount float64, flaggedMerchants []string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.AlertEmail}
	e.Subject = fmt.Sprintf("High-Risk Transaction Alert: %d suspicious in the last 24h", suspiciousCount)

	body := fmt.Sprintf(
		"Suspicious transactions in the last 24 hours: %d\n"+
			"Total amount across suspicious rows: %.2f\n"+
			"Sweep time: %s\n",
		suspiciousCount, totalAmount, time.Now().Format("2006-01-02 15:04:05"),
	)
	if len(flaggedMerchants) > 0 {
		body += fmt.Sprintf(
			"\nTransactions touched %d watchlisted merchants:\n%s\n",
			len(flaggedMerchants), strings.Join(flaggedMerchants, "\n"),
		)
	}
	body += "\nReview the high-risk dashboard for details.\n"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send alert to %s: %v", s.cfg.AlertEmail, err)
		return fmt.Errorf("failed to send alert: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.AlertEmail, e.Subject)
	return nil
}
