package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eventixs/pkg/logger"

	"github.com/IBM/sarama"
)

type NotificationConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	OffsetOldest     bool
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:          []string{"localhost:9092"},
		GroupID:          "eventixs-notification-workers",
		Topics:           []string{"eventixs-notifications"},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		OffsetOldest:     false,
	}
}

type KafkaNotificationConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	cancel        context.CancelFunc
	log           *logger.Logger
}

func NewKafkaNotificationConsumer(config *ConsumerConfig, emailService EmailService) (NotificationConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaNotificationConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		emailService:  emailService,
		log:           logger.GetDefault(),
	}, nil
}

func (knc *KafkaNotificationConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	ctx, knc.cancel = context.WithCancel(ctx)

	go knc.handleErrors(ctx)

	for i := 0; i < numWorkers; i++ {
		go knc.runWorker(ctx, i)
	}

	knc.log.Info("notification consumer workers started",
		"workers", numWorkers, "topics", knc.config.Topics)
	return nil
}

func (knc *KafkaNotificationConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		workerID:     workerID,
		emailService: knc.emailService,
		log:          knc.log,
	}

	for {
		if err := knc.consumerGroup.Consume(ctx, knc.config.Topics, handler); err != nil {
			knc.log.Error("consumer worker error", "worker_id", workerID, "error", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (knc *KafkaNotificationConsumer) handleErrors(ctx context.Context) {
	for {
		select {
		case err, ok := <-knc.consumerGroup.Errors():
			if !ok {
				return
			}
			knc.log.Error("consumer group error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

func (knc *KafkaNotificationConsumer) Stop() error {
	if knc.cancel != nil {
		knc.cancel()
	}
	return knc.consumerGroup.Close()
}

type consumerGroupHandler struct {
	workerID     int
	emailService EmailService
	log          *logger.Logger
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var notification EmailNotification
		if err := json.Unmarshal(message.Value, &notification); err != nil {
			h.log.Error("failed to decode notification, skipping",
				"worker_id", h.workerID, "offset", message.Offset, "error", err)
			session.MarkMessage(message, "")
			continue
		}

		h.deliver(&notification)
		session.MarkMessage(message, "")
	}
	return nil
}

// deliver retries transient send failures in-place before giving up on
// the message. Kafka offsets are committed either way; a notification
// is not worth blocking the partition for.
func (h *consumerGroupHandler) deliver(notification *EmailNotification) {
	for {
		err := h.emailService.SendNotification(notification)
		if err == nil {
			return
		}

		notification.RetryCount++
		if !notification.ShouldRetry() {
			h.log.Error("notification dropped after retries",
				"worker_id", h.workerID,
				"notification_id", notification.ID,
				"type", notification.Type,
				"recipient", notification.RecipientEmail,
				"error", err)
			return
		}

		notification.Status = NotificationStatusPending
		time.Sleep(time.Second * time.Duration(notification.RetryCount))
	}
}
