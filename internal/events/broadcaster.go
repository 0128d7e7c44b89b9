package events

import (
	"context"
	"errors"
	"sync"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
)

// Broadcaster fans cart changes out to in-process subscribers such as the
// server-sent events stream. A subscriber that falls behind misses changes
// rather than blocking the cart.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan cart.Change
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan cart.Change)}
}

// Subscribe returns a channel of changes and a cancel func that closes it.
func (b *Broadcaster) Subscribe(buffer int) (<-chan cart.Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan cart.Change, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) Notify(ctx context.Context, c cart.Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
	return nil
}

// Multi notifies every notifier in order and joins their errors.
type Multi []cart.Notifier

func (m Multi) Notify(ctx context.Context, c cart.Change) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
