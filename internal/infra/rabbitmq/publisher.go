package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	headerJobID    = "x-job-id"
	headerReason   = "x-dlq-reason"
	headerFailedAt = "x-failed-at"
)

// Publisher owns one channel shared by the status and DLQ publishers.
type Publisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

func (p *Publisher) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	msg.ContentType = "application/json"
	msg.DeliveryMode = amqp.Persistent
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if err := p.channel.PublishWithContext(ctx, exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish to %q: %w", key, err)
	}
	return nil
}

// StatusPublisher reports job progress on the frames exchange.
type StatusPublisher struct {
	pub        *Publisher
	routingKey string
}

func NewStatusPublisher(pub *Publisher, routingKey string) *StatusPublisher {
	return &StatusPublisher{pub: pub, routingKey: routingKey}
}

func (sp *StatusPublisher) PublishStatus(ctx context.Context, msg entity.ExtractionStatusMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	return sp.pub.publish(ctx, sp.pub.exchange, sp.routingKey, statusPublishing(msg, body))
}

func statusPublishing(msg entity.ExtractionStatusMessage, body []byte) amqp.Publishing {
	return amqp.Publishing{
		Type:      string(msg.Status),
		MessageId: fmt.Sprintf("%s-%d-%s", msg.JobID, msg.Attempt, msg.Status),
		Body:      body,
		Headers:   amqp.Table{headerJobID: msg.JobID.String()},
	}
}

// DLQPublisher parks requests that can never succeed.
type DLQPublisher struct {
	pub   *Publisher
	queue string
}

func NewDLQPublisher(pub *Publisher, dlqQueue string) *DLQPublisher {
	return &DLQPublisher{pub: pub, queue: dlqQueue}
}

// PublishToDLQ goes through the default exchange straight to the DLQ. The
// original body is kept verbatim so the request can be replayed.
func (dp *DLQPublisher) PublishToDLQ(ctx context.Context, msg []byte, reason string) error {
	return dp.pub.publish(ctx, "", dp.queue, dlqPublishing(msg, reason, time.Now().UTC()))
}

func dlqPublishing(body []byte, reason string, at time.Time) amqp.Publishing {
	return amqp.Publishing{
		Body:      body,
		Timestamp: at,
		Headers: amqp.Table{
			headerReason:   reason,
			headerFailedAt: at.Format(time.RFC3339),
		},
	}
}
