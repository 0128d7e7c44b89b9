package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/argea-gh/herbaprimax-V3/internal/middleware"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher forwards cart changes to the events exchange. It satisfies
// cart.Notifier.
type Publisher struct {
	ch           channel
	producer     string
	partitionKey string
	seq          atomic.Int64
}

type PublisherOptions struct {
	Producer string
	// PartitionKey identifies this process's cart; a fresh uuid when empty.
	PartitionKey string
}

func NewPublisher(conn *amqp.Connection, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return newPublisher(ch, opts), nil
}

func newPublisher(ch channel, opts PublisherOptions) *Publisher {
	producer := opts.Producer
	if producer == "" {
		producer = "storefront"
	}
	partition := opts.PartitionKey
	if partition == "" {
		partition = uuid.NewString()
	}
	return &Publisher{ch: ch, producer: producer, partitionKey: partition}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) Notify(ctx context.Context, c cart.Change) error {
	ev := newCartChangedEvent(middleware.GetCorrelationID(ctx), p.partitionKey, p.producer, p.seq.Add(1), c)
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal CartChanged envelope: %w", err)
	}
	return p.publishJSON(ctx, CartChangedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
