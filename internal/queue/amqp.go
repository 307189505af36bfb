package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// NewAMQP constructs a RabbitMQ-backed queue with one durable queue per task
// type. Deliveries are acked after the handler returns.
func NewAMQP(log *slog.Logger, conn *amqp.Connection) (Queue, error) {
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	return &amqpQueue{log: log, conn: conn, pub: ch, declared: map[string]bool{}}, nil
}

type amqpQueue struct {
	log  *slog.Logger
	conn *amqp.Connection

	mu       sync.Mutex
	pub      *amqp.Channel
	declared map[string]bool
}

func declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	return err
}

func (q *amqpQueue) Enqueue(_ context.Context, task Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Type == "" {
		return errors.New("task type required")
	}
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}

	name := queueName(task.Type)
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.declared[name] {
		if err := declare(q.pub, name); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
		q.declared[name] = true
	}
	return q.pub.Publish(
		"",   // default exchange
		name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    task.ID.String(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (q *amqpQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	defer ch.Close()

	name := queueName(taskType)
	if err := declare(ch, name); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := ch.Consume(
		name,
		"workers-"+string(taskType),
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			q.handleDelivery(ctx, msg, handler)
		}
	}
}

func (q *amqpQueue) handleDelivery(ctx context.Context, msg amqp.Delivery, handler Handler) {
	var task Task
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		q.log.Error("failed to decode task", "err", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := waitUntil(ctx, task.NotBefore); err != nil {
		_ = msg.Nack(false, true)
		return
	}

	if err := handler(ctx, task); err != nil {
		next, retry := nextAttempt(task, err, time.Now())
		if retry {
			if enqErr := q.Enqueue(ctx, next); enqErr != nil {
				q.log.Error("failed to re-enqueue task after failure", "id", task.ID, "type", task.Type, "original_err", err, "enqueue_err", enqErr)
				_ = msg.Nack(false, true)
				return
			}
			q.log.Warn("task failed; retry scheduled", "id", task.ID, "type", task.Type, "attempt", next.Attempts, "err", err)
		} else {
			q.log.Error("task permanently failed", "id", task.ID, "type", task.Type, "attempts", next.Attempts, "original_err", err)
		}
	}
	_ = msg.Ack(false)
}

func (q *amqpQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.pub.Close(); err != nil {
		q.log.Warn("failed to close amqp channel", "err", err)
	}
	return q.conn.Close()
}
