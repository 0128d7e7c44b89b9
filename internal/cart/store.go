// Package cart implements the shopping cart: an ordered list of line items
// mirrored to durable storage, with every quantity increase checked against
// the catalog's current stock.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
	"github.com/argea-gh/herbaprimax-V3/internal/storage"
	"go.uber.org/zap"
)

// StorageKey is the storage key holding the cart.
const StorageKey = "herbaprima_cart_v1"

// ProductLookup is the slice of catalog.Source the cart needs.
type ProductLookup interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// Notifier receives every accepted change. It is called with the cart lock
// held, so changes arrive in order; implementations must not call back into
// the Store.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
}

type Recorder interface {
	ObserveCartOp(op Op, outcome Outcome, err error)
}

type Store struct {
	store    storage.Store
	products ProductLookup
	notifier Notifier
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	// productLocks is non-nil when mutations are serialized per product.
	productLocks *keyedMutex

	mu    sync.Mutex
	items []LineItem
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSerializedMutations holds a per-product lock from the stock lookup
// until the cart is written, so two concurrent requests for the same product
// cannot both pass validation against the same stock figure. Every
// mutation of a single product takes the lock, including the ones that
// never consult the catalog.
func WithSerializedMutations() Option {
	return func(s *Store) { s.productLocks = newKeyedMutex() }
}

// NewStore returns an empty cart. Call Load to restore the persisted state.
func NewStore(store storage.Store, products ProductLookup, opts ...Option) *Store {
	s := &Store{
		store:    store,
		products: products,
		logger:   zap.NewNop(),
		now:      time.Now,
		items:    []LineItem{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory cart with the persisted one. A missing or
// corrupt value yields an empty cart; only storage failures are returned.
func (s *Store) Load(ctx context.Context) error {
	var items []LineItem
	err := storage.LoadJSON(ctx, s.store, StorageKey, &items)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		items = nil
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("stored cart is corrupt, starting empty", zap.Error(err))
		items = nil
	default:
		return fmt.Errorf("load cart: %w", err)
	}

	s.mu.Lock()
	s.items = sanitize(items)
	s.mu.Unlock()

	s.logger.Debug("cart loaded", zap.Int("lines", len(items)))
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newSnapshot(s.items)
}

// Add raises the quantity of productID by qty, creating the line if needed.
// The resulting quantity must not exceed the product's current stock.
func (s *Store) Add(ctx context.Context, productID string, qty int) (Snapshot, error) {
	if qty < 1 {
		return s.reject(OpAdd, fmt.Errorf("%w: add %d", ErrInvalidQuantity, qty))
	}
	defer s.lockProduct(productID)()

	prod, err := s.lookup(ctx, productID)
	if err != nil {
		return s.reject(OpAdd, err)
	}

	return s.mutate(ctx, OpAdd, productID, func(items []LineItem) ([]LineItem, Outcome, error) {
		idx := indexOf(items, productID)
		current := 0
		if idx >= 0 {
			current = items[idx].Quantity
		}
		if qty > prod.Stock-current {
			return nil, "", &StockExceededError{ProductID: productID, Requested: addQuantity(current, qty), Remaining: prod.Stock}
		}
		desired := current + qty
		if idx >= 0 {
			items[idx].Quantity = desired
			return items, OutcomeUpdated, nil
		}
		return append(items, LineItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			UnitPrice: prod.Price,
			Quantity:  qty,
			ImageRef:  prod.Image,
		}), OutcomeAdded, nil
	})
}

// SetQuantity sets the line for productID to qty. Zero removes the line
// without consulting the catalog; any positive quantity is validated against
// current stock. A product that is not in the cart is left alone.
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int) (Snapshot, error) {
	if qty < 0 {
		return s.reject(OpSet, fmt.Errorf("%w: set %d", ErrInvalidQuantity, qty))
	}
	defer s.lockProduct(productID)()

	if qty == 0 {
		return s.mutate(ctx, OpSet, productID, removeLine(productID))
	}

	if _, ok := s.Snapshot().Line(productID); !ok {
		return s.mutate(ctx, OpSet, productID, unchanged)
	}

	prod, err := s.lookup(ctx, productID)
	if err != nil {
		return s.reject(OpSet, err)
	}

	return s.mutate(ctx, OpSet, productID, func(items []LineItem) ([]LineItem, Outcome, error) {
		idx := indexOf(items, productID)
		if idx < 0 {
			return items, OutcomeUnchanged, nil
		}
		if qty > prod.Stock {
			return nil, "", &StockExceededError{ProductID: productID, Requested: qty, Remaining: prod.Stock}
		}
		if items[idx].Quantity == qty {
			return items, OutcomeUnchanged, nil
		}
		items[idx].Quantity = qty
		return items, OutcomeUpdated, nil
	})
}

// Increment adds one unit to an existing line, validated against stock.
func (s *Store) Increment(ctx context.Context, productID string) (Snapshot, error) {
	defer s.lockProduct(productID)()

	if _, ok := s.Snapshot().Line(productID); !ok {
		return s.reject(OpIncrement, fmt.Errorf("%w: %s", ErrItemNotInCart, productID))
	}

	prod, err := s.lookup(ctx, productID)
	if err != nil {
		return s.reject(OpIncrement, err)
	}

	return s.mutate(ctx, OpIncrement, productID, func(items []LineItem) ([]LineItem, Outcome, error) {
		idx := indexOf(items, productID)
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrItemNotInCart, productID)
		}
		current := items[idx].Quantity
		if current >= prod.Stock {
			return nil, "", &StockExceededError{ProductID: productID, Requested: addQuantity(current, 1), Remaining: prod.Stock}
		}
		items[idx].Quantity = current + 1
		return items, OutcomeUpdated, nil
	})
}

// Decrement removes one unit from an existing line; the last unit removes
// the line. Lowering a quantity never needs a stock check.
func (s *Store) Decrement(ctx context.Context, productID string) (Snapshot, error) {
	defer s.lockProduct(productID)()

	return s.mutate(ctx, OpDecrement, productID, func(items []LineItem) ([]LineItem, Outcome, error) {
		idx := indexOf(items, productID)
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrItemNotInCart, productID)
		}
		if items[idx].Quantity <= 1 {
			return append(items[:idx], items[idx+1:]...), OutcomeRemoved, nil
		}
		items[idx].Quantity--
		return items, OutcomeUpdated, nil
	})
}

// Remove drops the line for productID. Removing an absent product is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) (Snapshot, error) {
	defer s.lockProduct(productID)()

	return s.mutate(ctx, OpRemove, productID, removeLine(productID))
}

// Reset empties the cart.
func (s *Store) Reset(ctx context.Context) (Snapshot, error) {
	return s.mutate(ctx, OpReset, "", func([]LineItem) ([]LineItem, Outcome, error) {
		return []LineItem{}, OutcomeCleared, nil
	})
}

type mutation func(items []LineItem) ([]LineItem, Outcome, error)

// mutate applies fn to a copy of the lines and, when something changed,
// persists the result before publishing it. A failed write leaves the
// in-memory cart untouched.
func (s *Store) mutate(ctx context.Context, op Op, productID string, fn mutation) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, outcome, err := fn(cloneItems(s.items))
	if err != nil {
		s.observe(op, OutcomeRejected, err)
		return Snapshot{}, err
	}
	if outcome == OutcomeUnchanged {
		s.observe(op, outcome, nil)
		return newSnapshot(s.items), nil
	}

	if err := storage.SaveJSON(ctx, s.store, StorageKey, next); err != nil {
		err = fmt.Errorf("%w: %w", ErrPersist, err)
		s.observe(op, OutcomeRejected, err)
		return Snapshot{}, err
	}
	s.items = next
	snap := newSnapshot(next)
	s.observe(op, outcome, nil)

	if s.notifier != nil {
		change := Change{Op: op, Outcome: outcome, ProductID: productID, Snapshot: snap, At: s.now().UTC()}
		if err := s.notifier.Notify(ctx, change); err != nil {
			s.logger.Warn("cart change notification failed", zap.String("op", string(op)), zap.Error(err))
		}
	}
	return snap, nil
}

func (s *Store) reject(op Op, err error) (Snapshot, error) {
	s.observe(op, OutcomeRejected, err)
	return Snapshot{}, err
}

func (s *Store) lookup(ctx context.Context, productID string) (catalog.Product, error) {
	prod, err := s.products.Get(ctx, productID)
	if err != nil {
		s.logger.Info("stock validation failed", zap.String("product_id", productID), zap.Error(err))
		return catalog.Product{}, &ValidationError{ProductID: productID, Err: err}
	}
	if prod.Stock < 0 {
		return catalog.Product{}, &ValidationError{
			ProductID: productID,
			Err:       fmt.Errorf("%w: negative stock %d", catalog.ErrInvalidPayload, prod.Stock),
		}
	}
	return prod, nil
}

func (s *Store) lockProduct(productID string) (unlock func()) {
	if s.productLocks == nil {
		return func() {}
	}
	return s.productLocks.Lock(productID)
}

func (s *Store) observe(op Op, outcome Outcome, err error) {
	if s.recorder != nil {
		s.recorder.ObserveCartOp(op, outcome, err)
	}
}

func removeLine(productID string) mutation {
	return func(items []LineItem) ([]LineItem, Outcome, error) {
		idx := indexOf(items, productID)
		if idx < 0 {
			return items, OutcomeUnchanged, nil
		}
		return append(items[:idx], items[idx+1:]...), OutcomeRemoved, nil
	}
}

func unchanged(items []LineItem) ([]LineItem, Outcome, error) {
	return items, OutcomeUnchanged, nil
}

func indexOf(items []LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// sanitize drops lines with a blank id or a quantity below one, and folds
// duplicate ids into the first occurrence. Folded quantities saturate at
// math.MaxInt; stock is checked again on the next increase.
func sanitize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if idx := indexOf(out, it.ProductID); idx >= 0 {
			out[idx].Quantity = addQuantity(out[idx].Quantity, it.Quantity)
			continue
		}
		out = append(out, it)
	}
	return out
}
