// Package events publishes order lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/01moynul/medistore/internal/config"
	"github.com/01moynul/medistore/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	maxPriority = 10
	// Checkout events jump the queue; status changes do not.
	createdPriority = 5
	defaultPriority = 1
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// RabbitMQ publishes on ch and consumes on sub, so a slow consumer never
// holds up publishers.
type RabbitMQ struct {
	conn *amqp.Connection
	ch   channel
	sub  channel
	cfg  *config.Config
	mu   sync.Mutex
}

// NewRabbitMQ dials cfg.RabbitMQURL and opens the publish and consume channels.
func NewRabbitMQ(cfg *config.Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	sub, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}

	return &RabbitMQ{conn: conn, ch: ch, sub: sub, cfg: cfg}, nil
}

func (r *RabbitMQ) deadLetterExchange() string {
	return r.cfg.DeadLetterQueue + "_exchange"
}

// SetupQueues declares the order exchange, the order queue and its
// dead-letter queue. Every declaration is idempotent.
func (r *RabbitMQ) SetupQueues() error {
	// 1. --- Dead-letter exchange and queue ---
	if err := r.ch.ExchangeDeclare(
		r.deadLetterExchange(),
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := r.ch.QueueDeclare(
		r.cfg.DeadLetterQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-queue-type": "classic"},
	); err != nil {
		return err
	}

	if err := r.ch.QueueBind(r.cfg.DeadLetterQueue, r.cfg.DeadLetterQueue, r.deadLetterExchange(), false, nil); err != nil {
		return err
	}

	// 2. --- Order exchange, routed by event type ---
	if err := r.ch.ExchangeDeclare(
		r.cfg.OrderExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	// 3. --- Main order queue (priority + dead-lettering) ---
	if _, err := r.ch.QueueDeclare(
		r.cfg.OrderQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		amqp.Table{
			"x-max-priority":            maxPriority,
			"x-dead-letter-exchange":    r.deadLetterExchange(),
			"x-dead-letter-routing-key": r.cfg.DeadLetterQueue,
		},
	); err != nil {
		return err
	}

	return r.ch.QueueBind(r.cfg.OrderQueue, "order.#", r.cfg.OrderExchange, false, nil)
}

// PublishOrderEvent sends ev as persistent JSON, routed by its type.
func (r *RabbitMQ) PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	priority := uint8(defaultPriority)
	if ev.Type == models.EventOrderCreated {
		priority = createdPriority
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Type:         ev.Type,
		Body:         body,
		Priority:     priority,
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch.PublishWithContext(ctx, r.cfg.OrderExchange, ev.Type, false, false, msg)
}

func (r *RabbitMQ) Close() {
	for _, ch := range []channel{r.sub, r.ch} {
		if ch == nil {
			continue
		}
		if err := ch.Close(); err != nil {
			log.Printf("WARN: closing rabbitmq channel: %v", err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			log.Printf("WARN: closing rabbitmq connection: %v", err)
		}
	}
}
