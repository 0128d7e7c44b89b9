package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/google/uuid"
)

const (
	EventTypeCartChanged = "CartChanged"
	cartChangedSchema    = "storefront.cart.changed.v1"
)

// EventEnvelope is the shared envelope for published v1 events.
type EventEnvelope struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      int64     `json:"sequence,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
}

func (e EventEnvelope) Validate(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName %q", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return errors.New("missing partitionKey")
	}
	if e.EventID == "" {
		return errors.New("missing eventId")
	}
	return nil
}

type CartChangedPayload struct {
	Op            cart.Op         `json:"op"`
	Outcome       cart.Outcome    `json:"outcome"`
	ProductID     string          `json:"productId,omitempty"`
	Items         []cart.LineItem `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalPrice    int64           `json:"totalPrice"`
}

type CartChangedEvent struct {
	EventEnvelope
	Payload CartChangedPayload `json:"payload"`
}

func newCartChangedEvent(correlationID, partitionKey, producer string, seq int64, c cart.Change) CartChangedEvent {
	return CartChangedEvent{
		EventEnvelope: EventEnvelope{
			EventName:     EventTypeCartChanged,
			EventVersion:  1,
			EventID:       uuid.NewString(),
			CorrelationID: correlationID,
			Producer:      producer,
			PartitionKey:  partitionKey,
			Sequence:      seq,
			OccurredAt:    c.At,
			Schema:        cartChangedSchema,
		},
		Payload: CartChangedPayload{
			Op:            c.Op,
			Outcome:       c.Outcome,
			ProductID:     c.ProductID,
			Items:         c.Snapshot.Items,
			TotalQuantity: c.Snapshot.TotalQuantity,
			TotalPrice:    c.Snapshot.TotalPrice,
		},
	}
}

func validateCartChanged(ev CartChangedEvent) error {
	if err := ev.Validate(EventTypeCartChanged, 1); err != nil {
		return err
	}
	if ev.Schema != cartChangedSchema {
		return fmt.Errorf("unexpected schema %q", ev.Schema)
	}
	if ev.Payload.Op == "" {
		return errors.New("missing payload.op")
	}
	return nil
}

// DecodeCartChanged parses and validates a published CartChanged body.
func DecodeCartChanged(body []byte) (CartChangedEvent, error) {
	var ev CartChangedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return CartChangedEvent{}, fmt.Errorf("decode CartChanged: %w", err)
	}
	if err := validateCartChanged(ev); err != nil {
		return CartChangedEvent{}, err
	}
	return ev, nil
}
