// Package notifier publishes escalation and document-fallback messages to the
// queues the manual-review tooling consumes.
package notifier

import (
	"context"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// QueueService owns one channel and both durable queues. Publishes are
// serialized; amqp channels are not safe for concurrent use.
type QueueService struct {
	ch  *amqp.Channel
	log *zap.Logger
	mu  sync.Mutex
}

func NewQueueService(conn *amqp.Connection, log *zap.Logger) (*QueueService, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	for _, queueName := range []string{constvars.QueueEscalations, constvars.QueueDocumentFallback} {
		_, err = ch.QueueDeclare(
			queueName,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		)
		if err != nil {
			return nil, err
		}
	}

	return &QueueService{ch: ch, log: log}, nil
}

var (
	_ contracts.EscalationNotifier = (*QueueService)(nil)
	_ contracts.DocumentFallback   = (*QueueService)(nil)
)

// PublishEscalation hands the failed order to the human-review queue.
func (s *QueueService) PublishEscalation(ctx context.Context, payload *contracts.EscalationPayload) error {
	return s.publish(ctx, constvars.QueueEscalations, payload)
}

// RequestDocument asks the document generator to produce a manual submission
// form for the order.
func (s *QueueService) RequestDocument(ctx context.Context, payload *contracts.EscalationPayload) error {
	return s.publish(ctx, constvars.QueueDocumentFallback, payload)
}

func (s *QueueService) publish(ctx context.Context, queueName string, payload *contracts.EscalationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  constvars.MIMEApplicationJSON,
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return exceptions.ErrRabbitMQPublish(err, queueName)
	}

	s.log.Info("escalation message published",
		zap.String("queue", queueName),
		zap.String(constvars.LoggingOrderIDKey, payload.OrderID),
	)
	return nil
}

// Close releases the channel. The connection belongs to the bootstrap.
func (s *QueueService) Close() error {
	return s.ch.Close()
}
