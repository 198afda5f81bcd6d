package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/room-booking-api/internal/clock"
	"github.com/noah-isme/room-booking-api/internal/models"
	"github.com/noah-isme/room-booking-api/pkg/jobs"
)

// NotificationPublisher delivers an encoded notification to a channel.
type NotificationPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// NotificationConfig tunes the dispatch queue.
type NotificationConfig struct {
	Channel    string
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// NotificationService publishes booking lifecycle notifications asynchronously. A nil service
// drops notifications.
type NotificationService struct {
	publisher NotificationPublisher
	queue     *jobs.Queue
	channel   string
	clock     clock.Clock
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotificationService wires the publisher behind a worker queue. Call Start before Notify.
func NewNotificationService(publisher NotificationPublisher, cfg NotificationConfig, clk clock.Clock, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	if cfg.Channel == "" {
		cfg.Channel = "bookings"
	}
	s := &NotificationService{
		publisher: publisher,
		channel:   cfg.Channel,
		clock:     clk,
		metrics:   metrics,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("booking-notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop halts the workers.
func (s *NotificationService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Notify enqueues a notification for event. It never blocks on delivery.
func (s *NotificationService) Notify(ctx context.Context, kind string, event models.Event) {
	if s == nil {
		return
	}
	notification := models.BookingNotification{
		ID:        uuid.NewString(),
		Type:      kind,
		Timestamp: s.clock.Now(),
		Payload:   event,
	}
	err := s.queue.Enqueue(jobs.Job{ID: notification.ID, Type: kind, Payload: notification})
	if err != nil {
		s.metrics.RecordNotification(kind, "dropped")
		s.logger.Warn("booking notification dropped",
			zap.String("type", kind), zap.Int64("event_id", event.ID), zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.BookingNotification)
	if !ok {
		s.metrics.RecordNotification(job.Type, OutcomeRejected)
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		s.metrics.RecordNotification(job.Type, OutcomeRejected)
		s.logger.Error("encode notification", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	if s.publisher == nil {
		return errors.New("no notification publisher configured")
	}
	receivers, err := s.publisher.Publish(ctx, s.channel, payload)
	if err != nil {
		s.metrics.RecordNotification(job.Type, OutcomeError)
		return fmt.Errorf("publish %s: %w", notification.Type, err)
	}
	s.metrics.RecordNotification(job.Type, OutcomeSuccess)
	s.logger.Debug("booking notification published",
		zap.String("type", notification.Type), zap.Int64("event_id", notification.Payload.ID), zap.Int64("receivers", receivers))
	return nil
}
