package events

import (
	"context"
	"time"

	"mintmart/internal/domain"
)

// Publisher emits order lifecycle events for downstream consumers
// (fulfillment, notifications). Publishing is best-effort: checkout
// never fails because the broker is down.
type Publisher interface {
	OrderCreated(ctx context.Context, o *domain.Order) error
	OrderCompleted(ctx context.Context, o *domain.Order) error
	OrderFailed(ctx context.Context, o *domain.Order) error
}

type OrderEvent struct {
	EventType  string    `json:"eventType"`
	OrderID    string    `json:"orderId"`
	Wallet     string    `json:"wallet"`
	State      string    `json:"state"`
	Reason     string    `json:"reason,omitempty"`
	TotalMinor int64     `json:"totalMinor"`
	Items      []Item    `json:"items,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitMinor int64  `json:"unitMinor"`
}

func newOrderEvent(eventType string, o *domain.Order) OrderEvent {
	ev := OrderEvent{
		EventType:  eventType,
		OrderID:    o.ID,
		Wallet:     o.WalletAddress,
		State:      o.State.String(),
		Reason:     o.Reason,
		TotalMinor: o.TotalMinor,
		Timestamp:  time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, Item{
			ProductID: it.ProductID,
			Quantity:  it.Qty,
			UnitMinor: it.UnitMinor,
		})
	}
	return ev
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) OrderCreated(context.Context, *domain.Order) error   { return nil }
func (Noop) OrderCompleted(context.Context, *domain.Order) error { return nil }
func (Noop) OrderFailed(context.Context, *domain.Order) error    { return nil }
