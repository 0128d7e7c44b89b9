package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/argea-gh/herbaprimax-V3/internal/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var sampleChange = cart.Change{
	Op:        cart.OpAdd,
	Outcome:   cart.OutcomeAdded,
	ProductID: "prod-005",
	Snapshot: cart.Snapshot{
		Items:         []cart.LineItem{{ProductID: "prod-005", Name: "Madu Multiflora", UnitPrice: 100000, Quantity: 2}},
		TotalQuantity: 2,
		TotalPrice:    200000,
	},
	At: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
}

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu     sync.Mutex
	msgs   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestCartChangedEnvelope(t *testing.T) {
	ev := newCartChangedEvent("cid-1", "cart-1", "storefront", 7, sampleChange)
	require.NoError(t, validateCartChanged(ev))
	require.Equal(t, int64(7), ev.Sequence)
	require.Equal(t, sampleChange.At, ev.OccurredAt)
	require.Equal(t, int64(200000), ev.Payload.TotalPrice)
	require.NotEmpty(t, ev.EventID)

	ev.EventName = "WrongName"
	require.Error(t, validateCartChanged(ev))
}

func TestPublisherNotify(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, PublisherOptions{PartitionKey: "cart-1"})
	ctx := middleware.WithCorrelationID(context.Background(), "cid-42")

	require.NoError(t, p.Notify(ctx, sampleChange))
	require.NoError(t, p.Notify(ctx, sampleChange))
	require.Len(t, ch.msgs, 2)

	msg := ch.msgs[1]
	require.Equal(t, EventsExchange, msg.exchange)
	require.Equal(t, CartChangedRoutingKey, msg.key)
	require.Equal(t, "application/json", msg.msg.ContentType)
	require.Equal(t, amqp.Persistent, msg.msg.DeliveryMode)

	ev, err := DecodeCartChanged(msg.msg.Body)
	require.NoError(t, err)
	require.Equal(t, "cid-42", ev.CorrelationID)
	require.Equal(t, "cart-1", ev.PartitionKey)
	require.Equal(t, "storefront", ev.Producer)
	require.Equal(t, int64(2), ev.Sequence)
	require.Equal(t, sampleChange.Snapshot.Items, ev.Payload.Items)

	require.NoError(t, p.Close())
	require.True(t, ch.closed)
}

func TestPublisherNotifyError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := newPublisher(ch, PublisherOptions{})
	require.ErrorIs(t, p.Notify(context.Background(), sampleChange), amqp.ErrClosed)
}

func TestDecodeCartChangedRejectsGarbage(t *testing.T) {
	_, err := DecodeCartChanged([]byte("nope"))
	require.Error(t, err)
	_, err = DecodeCartChanged([]byte(`{"eventName":"CartChanged","eventVersion":1}`))
	require.Error(t, err)
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	first, cancelFirst := b.Subscribe(4)
	second, cancelSecond := b.Subscribe(1)
	require.Equal(t, 2, b.Subscribers())

	require.NoError(t, b.Notify(context.Background(), sampleChange))
	require.NoError(t, b.Notify(context.Background(), sampleChange))

	require.Len(t, first, 2)
	require.Len(t, second, 1, "full subscribers drop changes instead of blocking")

	cancelFirst()
	cancelFirst()
	_, open := <-drain(first)
	require.False(t, open)
	require.Equal(t, 1, b.Subscribers())

	cancelSecond()
	require.Zero(t, b.Subscribers())
	require.NoError(t, b.Notify(context.Background(), sampleChange))
}

func TestBroadcasterConcurrentSubscribers(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		ch, cancel := b.Subscribe(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ch
			cancel()
		}()
	}
	require.NoError(t, b.Notify(context.Background(), sampleChange))
	wg.Wait()
	require.Zero(t, b.Subscribers())
}

type errNotifier struct{ err error }

func (n errNotifier) Notify(context.Context, cart.Change) error { return n.err }

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	err := Multi{errNotifier{boom}, nil, b}.Notify(context.Background(), sampleChange)
	require.ErrorIs(t, err, boom)
	require.Len(t, ch, 1, "later notifiers still run")
	require.NoError(t, Multi{}.Notify(context.Background(), sampleChange))
}

// drain empties ch and returns it so a receive reports whether it was closed.
func drain(ch <-chan cart.Change) <-chan cart.Change {
	for range ch {
	}
	return ch
}
