// internal/queue/queue.go
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/logger"
)

// Handler processes one message body. A returned error rejects the message.
type Handler func(ctx context.Context, body []byte) error

// Consumer reads messages from a durable RabbitMQ queue with manual acks.
type Consumer struct {
	URL      string
	Queue    string
	Prefetch int
	Logger   *zap.Logger
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	log := logger.OrNop(c.Logger).With(zap.String("queue", c.Queue))

	conn, err := amqp.Dial(c.URL)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	prefetch := c.Prefetch
	if prefetch <= 0 {
		prefetch = 10
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	q, err := ch.QueueDeclare(
		c.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", c.Queue, err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	log.Info("consumer started")
	for {
		select {
		case <-ctx.Done():
			log.Info("consumer stopping")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			c.handleDelivery(ctx, log, d, h)
		}
	}
}

// handleDelivery acks on success. Failed messages are dropped, or
// dead-lettered when the queue has a dead-letter exchange.
func (c *Consumer) handleDelivery(ctx context.Context, log *zap.Logger, d amqp.Delivery, h Handler) {
	if err := h(ctx, d.Body); err != nil {
		log.Error("message rejected", zap.String("message_id", d.MessageId), zap.Error(err))
		if nerr := d.Nack(false, false); nerr != nil {
			log.Error("nack failed", zap.Error(nerr))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		log.Error("ack failed", zap.Error(err))
	}
}
