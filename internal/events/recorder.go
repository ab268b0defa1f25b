package events

import (
	"context"
	"sync"

	"mintmart/internal/domain"
)

// Recorder captures events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	Events []OrderEvent
}

func (r *Recorder) record(eventType string, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, newOrderEvent(eventType, o))
	return nil
}

func (r *Recorder) OrderCreated(_ context.Context, o *domain.Order) error {
	return r.record("OrderCreated", o)
}

func (r *Recorder) OrderCompleted(_ context.Context, o *domain.Order) error {
	return r.record("OrderCompleted", o)
}

func (r *Recorder) OrderFailed(_ context.Context, o *domain.Order) error {
	return r.record("OrderFailed", o)
}

func (r *Recorder) ByType(eventType string) []OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []OrderEvent
	for _, ev := range r.Events {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}
