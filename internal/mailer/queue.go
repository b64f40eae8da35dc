package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"shopadmin/pkg/rabbitmq"
)

// Publisher publishes a JSON body to a queue.
type Publisher interface {
	PublishJSON(queue string, body []byte) error
}

// QueueMailer hands messages to a broker queue; a worker delivers them later.
type QueueMailer struct {
	publisher Publisher
	queue     string
}

// NewQueueMailer creates a new QueueMailer publishing to queue.
func NewQueueMailer(publisher Publisher, queue string) *QueueMailer {
	return &QueueMailer{publisher: publisher, queue: queue}
}

// Send enqueues msg.
func (m *QueueMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}
	if err := m.publisher.PublishJSON(m.queue, body); err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}
	return nil
}

// DeliveryHandler returns a consumer callback that decodes queued messages and sends them with next.
// Undecodable messages are acknowledged and dropped. Permanent delivery failures are discarded
// without requeue so the broker can dead-letter them; other failures are requeued.
func DeliveryHandler(next Mailer, log *zap.Logger) func(amqp.Delivery) error {
	return func(d amqp.Delivery) error {
		var msg Message
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			log.Error("Dropping malformed email message",
				zap.Uint64("delivery_tag", d.DeliveryTag),
				zap.Error(err))
			return nil
		}
		if err := next.Send(context.Background(), msg); err != nil {
			if errors.Is(err, ErrPermanent) {
				log.Error("Discarding undeliverable email",
					zap.Strings("to", msg.To),
					zap.Error(err))
				return fmt.Errorf("%w: %w", rabbitmq.ErrDiscard, err)
			}
			return err
		}
		log.Info("Email delivered",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject))
		return nil
	}
}
