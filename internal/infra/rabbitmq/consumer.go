package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const maxBackoff = 60 * time.Second

// ErrDeliveriesClosed means the broker closed the delivery channel while the
// worker was still meant to run.
var ErrDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

type MessageHandler func(ctx context.Context, body []byte) error

// Consumer fans extraction requests out to a fixed pool of workers. Each
// worker owns its job end to end, including the decoder handle.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queue       string
	workerCount int
	baseDelay   time.Duration
	handler     MessageHandler
	logger      *zap.Logger
	wg          sync.WaitGroup
}

type ConsumerConfig struct {
	URL         string
	Queue       string
	Exchange    string
	DLQ         string
	StatusQueue string
	Prefetch    int
	WorkerCount int
	BaseDelayMs int
}

// Topology declares the exchange and queues shared by the consumer and the
// publishers. Requests are routed by the queue name.
func Topology(ch *amqp.Channel, cfg ConsumerConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range []string{cfg.Queue, cfg.DLQ, cfg.StatusQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	if err := ch.QueueBind(cfg.Queue, cfg.Queue, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind extract queue: %w", err)
	}
	if err := ch.QueueBind(cfg.StatusQueue, cfg.StatusQueue, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind status queue: %w", err)
	}
	return nil
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := Topology(ch, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		conn:        conn,
		channel:     ch,
		queue:       cfg.Queue,
		workerCount: cfg.WorkerCount,
		baseDelay:   time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		handler:     handler,
		logger:      logger,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(
		ctx,
		c.queue,
		"",
		false, // autoAck=false
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("starting worker pool",
		zap.Int("workers", c.workerCount),
		zap.String("queue", c.queue),
	)

	for i := 0; i < c.workerCount; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, deliveries)
	}

	drained := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(drained)
	}()

	select {
	case <-ctx.Done():
		c.logger.Info("context cancelled, waiting for workers to finish")
		<-drained
		return nil
	case <-drained:
		if ctx.Err() != nil {
			return nil
		}
		return ErrDeliveriesClosed
	}
}

func (c *Consumer) worker(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.With(zap.Int("worker_id", id))
	log.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			c.processDelivery(ctx, d, log)
		}
	}
}

func (c *Consumer) processDelivery(ctx context.Context, d amqp.Delivery, log *zap.Logger) {
	err := c.handler(ctx, d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	log.Warn("message processing failed, nacking",
		zap.Error(err),
		zap.Uint64("delivery_tag", d.DeliveryTag),
	)

	attempt := retryAttempt(err)
	delay := backoff(c.baseDelay, attempt)
	log.Info("backoff before requeue", zap.Duration("delay", delay), zap.Int("attempt", attempt))

	// on shutdown the request goes back to the queue for the next worker
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
	_ = d.Nack(false, true)
}

// retryAttempt reads the failed attempt from handler errors that carry one.
// A plain requeue adds no headers, so the broker cannot count attempts.
func retryAttempt(err error) int {
	var r interface{ RetryAttempt() int }
	if errors.As(err, &r) && r.RetryAttempt() > 0 {
		return r.RetryAttempt()
	}
	return 1
}

func backoff(base time.Duration, attempt int) time.Duration {
	delay := float64(base) * math.Pow(2, float64(attempt-1))
	if delay > float64(maxBackoff) {
		return maxBackoff
	}
	return time.Duration(delay)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
