package notifications

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"eventixs/internal/shared/config"
	"eventixs/pkg/logger"

	"github.com/google/uuid"
)

// UserService resolves a customer ID to contact details. The auth
// package provides the implementation.
type UserService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (email, firstName, lastName string, err error)
}

type NotificationService interface {
	// Notify publishes a notification for the customer, resolving their
	// contact details first.
	Notify(ctx context.Context, notType NotificationType, recipientID uuid.UUID,
		bookingID, eventID *uuid.UUID, templateData map[string]interface{}) error

	Start(ctx context.Context) error
	Stop() error
}

type kafkaNotificationService struct {
	cfg      config.KafkaConfig
	users    UserService
	producer NotificationProducer
	consumer NotificationConsumer
	workers  int

	mu      sync.Mutex
	running bool
	log     *logger.Logger
}

// NewService builds the Kafka-backed notification pipeline. When Kafka
// is disabled by configuration, a no-op service is returned so callers
// never need to branch.
func NewService(cfg config.KafkaConfig, users UserService) (NotificationService, error) {
	log := logger.GetDefault()

	if !cfg.Enabled {
		log.Info("notifications disabled, using no-op service")
		return &noopNotificationService{log: log}, nil
	}

	producerCfg := DefaultKafkaProducerConfig()
	producerCfg.Brokers = cfg.Brokers
	producerCfg.NotificationTopic = cfg.NotificationTopic

	producer, err := NewKafkaNotificationProducer(producerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	consumerCfg := DefaultConsumerConfig()
	consumerCfg.Brokers = cfg.Brokers
	consumerCfg.GroupID = cfg.ConsumerGroup
	consumerCfg.Topics = []string{cfg.NotificationTopic}

	var emailService EmailService
	smtpCfg := NewSMTPConfigFromEnv()
	if smtpCfg.Host == "" {
		log.Warn("SMTP not configured, notification emails will be recorded only")
		emailService = NewMockEmailService()
	} else {
		emailService = NewSMTPEmailService(smtpCfg)
	}

	consumer, err := NewKafkaNotificationConsumer(consumerCfg, emailService)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	return &kafkaNotificationService{
		cfg:      cfg,
		users:    users,
		producer: producer,
		consumer: consumer,
		workers:  getEnvIntOr("NUM_CONSUMER_WORKERS", 3),
		log:      log,
	}, nil
}

func (s *kafkaNotificationService) Notify(ctx context.Context, notType NotificationType, recipientID uuid.UUID,
	bookingID, eventID *uuid.UUID, templateData map[string]interface{}) error {

	email, firstName, lastName, err := s.users.GetUserByID(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("failed to resolve notification recipient: %w", err)
	}

	notification := NewEmailNotification(notType, recipientID, email, firstName+" "+lastName)
	notification.BookingID = bookingID
	notification.EventID = eventID
	if templateData != nil {
		notification.TemplateData = templateData
	}

	return s.producer.PublishNotification(ctx, notification)
}

func (s *kafkaNotificationService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if err := s.consumer.StartConsumers(ctx, s.workers); err != nil {
		return err
	}
	s.running = true
	return nil
}

func (s *kafkaNotificationService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if err := s.consumer.Stop(); err != nil {
		s.log.Error("failed to stop notification consumer", "error", err)
	}
	return s.producer.Close()
}

// noopNotificationService swallows notifications when Kafka is disabled.
type noopNotificationService struct {
	log *logger.Logger
}

func (s *noopNotificationService) Notify(ctx context.Context, notType NotificationType, recipientID uuid.UUID,
	bookingID, eventID *uuid.UUID, templateData map[string]interface{}) error {
	s.log.Debug("notification skipped", "type", notType, "recipient_id", recipientID)
	return nil
}

func (s *noopNotificationService) Start(ctx context.Context) error { return nil }
func (s *noopNotificationService) Stop() error                     { return nil }

func getEnvIntOr(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}
