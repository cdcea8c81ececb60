package events

import (
	"context"
	"log"

	"github.com/01moynul/medistore/internal/models"
)

// LocalPublisher logs each event and hands it straight to Handle in the
// calling goroutine. It stands in for RabbitMQ when RABBITMQ_URL is empty.
type LocalPublisher struct {
	Handle OrderEventHandler
}

func (p LocalPublisher) PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error {
	log.Printf("event %s: order=%d item=%d status=%s actor=%d", ev.Type, ev.OrderID, ev.OrderItemID, ev.Status, ev.ActorID)
	if p.Handle == nil {
		return nil
	}
	return p.Handle(ctx, ev)
}
