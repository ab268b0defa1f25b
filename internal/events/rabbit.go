package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"mintmart/internal/domain"
)

const (
	OrderCreatedQueue   = "order.created"
	OrderCompletedQueue = "order.completed"
	OrderFailedQueue    = "order.failed"
)

// RabbitPublisher publishes order events to durable queues over AMQP.
type RabbitPublisher struct {
	ch *amqp.Channel
}

func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare queues up front so publish never fails on missing infra
	for _, q := range []string{OrderCreatedQueue, OrderCompletedQueue, OrderFailedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare %s: %w", q, err)
		}
	}

	return &RabbitPublisher{ch: ch}, nil
}

func (p *RabbitPublisher) Close() error { return p.ch.Close() }

func (p *RabbitPublisher) OrderCreated(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, OrderCreatedQueue, newOrderEvent("OrderCreated", o))
}

func (p *RabbitPublisher) OrderCompleted(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, OrderCompletedQueue, newOrderEvent("OrderCompleted", o))
}

func (p *RabbitPublisher) OrderFailed(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, OrderFailedQueue, newOrderEvent("OrderFailed", o))
}

func (p *RabbitPublisher) publish(ctx context.Context, queue string, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.EventType, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",    // default exchange
		queue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
