package services

import (
	"fmt"
	"log"
	"net/smtp"
	"sync"

	"github.com/coachline-hq/coachline-api/config"
)

// MailService defines the interface for outgoing notification mail.
// Dispatch is fire-and-forget from the caller's perspective: delivery
// failures are logged by the caller, never retried here.
type MailService interface {
	Send(to, subject, body string) error
}

// SMTPMailService sends mail through a plain SMTP relay
type SMTPMailService struct {
	cfg *config.Config
}

var mailServiceInstance MailService

// InitMailService initializes the mail service from configuration
func InitMailService(cfg *config.Config) MailService {
	mailServiceInstance = &SMTPMailService{cfg: cfg}
	return mailServiceInstance
}

// GetMailService returns the initialized mail service instance
func GetMailService() MailService {
	return mailServiceInstance
}

// SetMailService sets the mail service instance (primarily for testing)
func SetMailService(service MailService) {
	mailServiceInstance = service
}

// Send delivers a plain-text email. When SMTP credentials are not
// configured the mail is logged instead, which keeps development and
// review environments working without a relay.
func (s *SMTPMailService) Send(to, subject, body string) error {
	if s.cfg.SMTPHost == "" || s.cfg.SMTPFrom == "" {
		log.Printf("SMTP not configured, would send to %s: %s", to, subject)
		return nil
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.SMTPFrom, to, subject, body))

	auth := smtp.PlainAuth("", s.cfg.SMTPFrom, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// MockMailService records sent mail for assertions in tests
type MockMailService struct {
	mu   sync.Mutex
	Sent []MockMail
	// Err, when set, is returned from Send to simulate relay failures
	Err error
}

// MockMail is one recorded message
type MockMail struct {
	To      string
	Subject string
	Body    string
}

// NewMockMailService creates a new recording mail service
func NewMockMailService() *MockMailService {
	return &MockMailService{}
}

// SetAsMockForTesting sets this mock as the global mail service instance
func (m *MockMailService) SetAsMockForTesting() {
	SetMailService(m)
}

// Send records the mail instead of delivering it
func (m *MockMailService) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, MockMail{To: to, Subject: subject, Body: body})
	return nil
}

// SentCount returns how many mails have been recorded
func (m *MockMailService) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
