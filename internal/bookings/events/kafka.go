package events

import (
	"context"
	"fmt"
	"time"

	"guesthouse/pkg/kafka"
	kafka_config "guesthouse/pkg/kafka/config"
	kafka_middleware "guesthouse/pkg/kafka/middleware"
	"guesthouse/pkg/logger"
	"guesthouse/pkg/middleware"
)

const defaultPublishTimeout = 5 * time.Second

type KafkaPublisher struct {
	producer *kafka.Producer
	metrics  *kafka_middleware.Metrics
	timeout  time.Duration
	log      *logger.Logger
}

// New returns a Kafka-backed publisher, or Noop when no broker is configured.
func New(cfg *kafka_config.Config, log *logger.Logger) (Publisher, error) {
	if cfg == nil || !cfg.Enabled() {
		log.Info("Kafka brokers not configured, booking events disabled")
		return Noop(), nil
	}

	producer, err := kafka.NewProducer(cfg, cfg.BookingEventsTopic, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking events producer: %w", err)
	}

	p := NewKafkaPublisher(producer, cfg.ProducerWriteTimeout, log)
	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	}
	log.Info("Booking events producer ready", cfg.LogFields()...)
	return p, nil
}

func NewKafkaPublisher(producer *kafka.Producer, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	return &KafkaPublisher{
		producer: producer,
		metrics:  metrics,
		timeout:  timeout,
		log:      log,
	}
}

// Publish writes the event keyed by booking id. The write is detached from
// ctx cancellation so a client hanging up does not drop the audit record.
func (p *KafkaPublisher) Publish(ctx context.Context, event BookingEvent) {
	requestID := middleware.RequestIDFromContext(ctx)

	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(requestID).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.producer.Publish(pubCtx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"request_id", requestID,
			"error_type", kafka.ClassifyError(err).String(),
			"error", err,
		)
	}
}

func (p *KafkaPublisher) Stats() kafka_middleware.MetricsSnapshot {
	return p.metrics.Snapshot()
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
