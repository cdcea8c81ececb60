package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/01moynul/medistore/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "medistore-notifications"

// OrderEventHandler processes one decoded order event.
type OrderEventHandler func(ctx context.Context, ev models.OrderEvent) error

// ConsumeOrderEvents feeds messages from the order queue to handle until
// ctx is done or the broker closes the delivery channel. A failed message
// is requeued once; a second failure or an undecodable body sends it to
// the dead-letter queue.
func (r *RabbitMQ) ConsumeOrderEvents(ctx context.Context, handle OrderEventHandler) error {
	if err := r.sub.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	msgs, err := r.sub.Consume(
		r.cfg.OrderQueue,
		consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	log.Printf("Consuming order events from %s", r.cfg.OrderQueue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, open := <-msgs:
			if !open {
				return nil
			}
			processDelivery(ctx, msg, handle)
		}
	}
}

func processDelivery(ctx context.Context, msg amqp.Delivery, handle OrderEventHandler) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("ERROR: panic while handling order event: %v", rec)
			nack(msg, false)
		}
	}()

	var ev models.OrderEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		log.Printf("WARN: undecodable order event %q: %v", msg.Body, err)
		nack(msg, false)
		return
	}

	if err := handle(ctx, ev); err != nil {
		log.Printf("WARN: handling %s for order %d (redelivered=%t): %v", ev.Type, ev.OrderID, msg.Redelivered, err)
		nack(msg, !msg.Redelivered)
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Printf("WARN: ack order event: %v", err)
	}
}

func nack(msg amqp.Delivery, requeue bool) {
	if err := msg.Nack(false, requeue); err != nil {
		log.Printf("WARN: nack order event: %v", err)
	}
}
