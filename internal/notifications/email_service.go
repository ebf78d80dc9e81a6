package notifications

import (
	"fmt"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"sync"

	"eventixs/pkg/logger"
)

// EmailService delivers a rendered notification to the recipient.
type EmailService interface {
	SendNotification(notification *EmailNotification) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func NewSMTPConfigFromEnv() *SMTPConfig {
	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}
	return &SMTPConfig{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      port,
		Username:  os.Getenv("SMTP_USERNAME"),
		Password:  os.Getenv("SMTP_PASSWORD"),
		FromEmail: os.Getenv("FROM_EMAIL"),
		FromName:  getEnvOr("SMTP_FROM_NAME", "Eventixs"),
	}
}

func getEnvOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

type SMTPEmailService struct {
	config *SMTPConfig
	log    *logger.Logger
}

func NewSMTPEmailService(config *SMTPConfig) *SMTPEmailService {
	return &SMTPEmailService{
		config: config,
		log:    logger.GetDefault(),
	}
}

func (s *SMTPEmailService) SendNotification(notification *EmailNotification) error {
	subject := notification.Subject
	if subject == "" {
		subject = defaultSubject(notification.Type)
	}

	body := renderBody(notification)
	message := buildMessage(s.config, notification.RecipientEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{notification.RecipientEmail}, message); err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("failed to send email to %s: %w", notification.RecipientEmail, err)
	}

	notification.MarkSent()
	s.log.Info("notification email sent",
		"recipient", notification.RecipientEmail, "type", notification.Type)
	return nil
}

func defaultSubject(notType NotificationType) string {
	switch notType {
	case NotificationTypeBookingConfirmed:
		return "Your booking is confirmed"
	case NotificationTypeBookingCancelled:
		return "Your booking was cancelled"
	case NotificationTypeReservationExpired:
		return "Your ticket hold expired"
	case NotificationTypePaymentFailed:
		return "Payment failed for your booking"
	default:
		return "Eventixs notification"
	}
}

func renderBody(notification *EmailNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", notification.RecipientName)

	switch notification.Type {
	case NotificationTypeBookingConfirmed:
		b.WriteString("Your booking is confirmed. See you at the event!\n")
	case NotificationTypeBookingCancelled:
		b.WriteString("Your booking has been cancelled.\n")
	case NotificationTypeReservationExpired:
		b.WriteString("Your ticket hold expired before payment completed. The tickets have been released.\n")
	case NotificationTypePaymentFailed:
		b.WriteString("We could not process your payment and the booking was cancelled.\n")
	}

	if ref, ok := notification.TemplateData["booking_ref"].(string); ok && ref != "" {
		fmt.Fprintf(&b, "\nBooking reference: %s\n", ref)
	}
	if name, ok := notification.TemplateData["event_name"].(string); ok && name != "" {
		fmt.Fprintf(&b, "Event: %s\n", name)
	}

	b.WriteString("\n— The Eventixs team\n")
	return b.String()
}

func buildMessage(cfg *SMTPConfig, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", cfg.FromName, cfg.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// MockEmailService records sent notifications instead of delivering
// them. Used in development when SMTP is not configured, and in tests.
type MockEmailService struct {
	mu   sync.Mutex
	Sent []*EmailNotification
	log  *logger.Logger
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{
		log: logger.GetDefault(),
	}
}

func (m *MockEmailService) SendNotification(notification *EmailNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	notification.MarkSent()
	m.Sent = append(m.Sent, notification)
	m.log.Info("mock email recorded",
		"recipient", notification.RecipientEmail, "type", notification.Type)
	return nil
}
