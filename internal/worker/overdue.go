// Package worker runs the background jobs of the API process.
package worker

import (
	"context"
	"log"
	"time"
)

// Expirer cancels pending orders older than ttl and reports how many.
type Expirer interface {
	ExpirePendingOrders(ctx context.Context, ttl time.Duration) (int, error)
}

// OverdueOrders cancels stale PENDING orders on every tick until ctx ends.
type OverdueOrders struct {
	Orders   Expirer
	Interval time.Duration
	TTL      time.Duration
}

// Run blocks until ctx is done. The first sweep happens one interval in.
func (w OverdueOrders) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	log.Printf("Background worker started: cancelling orders pending longer than %s", w.TTL)
	for {
		select {
		case <-ctx.Done():
			log.Println("Background worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w OverdueOrders) sweep(ctx context.Context) {
	n, err := w.Orders.ExpirePendingOrders(ctx, w.TTL)
	if err != nil {
		log.Printf("ERROR: overdue order sweep: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Cancelled %d overdue orders", n)
	}
}
