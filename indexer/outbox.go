package indexer

import (
	"sync"

	"github.com/Samuel1505/TrustBridge-sub000/metrics"
	"github.com/Samuel1505/TrustBridge-sub000/models"
	"github.com/Samuel1505/TrustBridge-sub000/registry"
)

// Outbox buffers committed events until the indexer persists them. Events
// leave in the order they were published.
type Outbox struct {
	mu      sync.Mutex
	pending []models.Event
}

var _ registry.EventSink = &Outbox{}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Publish(event models.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = append(o.pending, event)
	metrics.EventsPublished.WithLabelValues(string(event.Kind)).Inc()
	metrics.PendingEvents.Set(float64(len(o.pending)))
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

func (o *Outbox) drain() []models.Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	events := o.pending
	o.pending = nil
	metrics.PendingEvents.Set(0)
	return events
}

// requeue puts unpersisted events back in front of anything published since
// the drain.
func (o *Outbox) requeue(events []models.Event) {
	if len(events) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = append(append([]models.Event{}, events...), o.pending...)
	metrics.PendingEvents.Set(float64(len(o.pending)))
}
