package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"cinema-server/shared/models"
)

const DefaultGenerationEventsQueue = "generation_events"

// GenerationEvent публикуется, когда задача генерации пришла в конечное состояние.
type GenerationEvent struct {
	JobID       uuid.UUID       `json:"job_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Kind        string          `json:"kind"`
	Provider    string          `json:"provider"`
	State       models.JobState `json:"state"`
	ArtifactURL string          `json:"artifact_url,omitempty"`
	Error       string          `json:"error,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// EventPublisher отправляет события генерации.
type EventPublisher interface {
	PublishGenerationEvent(ctx context.Context, event GenerationEvent) error
	Close() error
}

type rabbitMQPublisher struct {
	ch        *amqp091.Channel
	queueName string
	logger    *zap.Logger
	mu        sync.Mutex
}

var _ EventPublisher = (*rabbitMQPublisher)(nil)

// NewRabbitMQPublisher открывает канал и объявляет durable очередь событий.
func NewRabbitMQPublisher(conn *amqp091.Connection, queueName string, logger *zap.Logger) (EventPublisher, error) {
	if conn == nil {
		return nil, errors.New("rabbitmq connection is nil")
	}
	if queueName == "" {
		queueName = DefaultGenerationEventsQueue
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel for publisher: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	logger.Info("Generation events queue declared", zap.String("queue", queueName))
	return &rabbitMQPublisher{
		ch:        ch,
		queueName: queueName,
		logger:    logger.Named("GenerationEventPublisher"),
	}, nil
}

func (p *rabbitMQPublisher) PublishGenerationEvent(ctx context.Context, event GenerationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return errors.New("publisher channel is closed")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",
		p.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			CorrelationId: event.JobID.String(),
			Body:          body,
			Timestamp:     event.OccurredAt,
			DeliveryMode:  amqp091.Persistent,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish generation event", zap.String("jobID", event.JobID.String()), zap.Error(err))
		return fmt.Errorf("failed to publish generation event: %w", err)
	}
	p.logger.Debug("Generation event published", zap.String("jobID", event.JobID.String()), zap.String("state", string(event.State)))
	return nil
}

func (p *rabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}

// NoopPublisher используется, когда RabbitMQ не настроен.
type NoopPublisher struct{}

func (NoopPublisher) PublishGenerationEvent(context.Context, GenerationEvent) error { return nil }
func (NoopPublisher) Close() error                                                  { return nil }
