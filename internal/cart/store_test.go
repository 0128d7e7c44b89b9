package cart

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
	"github.com/argea-gh/herbaprimax-V3/internal/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]catalog.Product
	err      error
	calls    atomic.Int32
	onGet    func()
}

func newFakeCatalog(products ...catalog.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[string]catalog.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) Get(ctx context.Context, id string) (catalog.Product, error) {
	f.calls.Add(1)
	if f.onGet != nil {
		f.onGet()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return catalog.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) setStock(id string, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Stock = stock
	f.products[id] = p
}

var (
	madu   = catalog.Product{ID: "prod-005", Name: "Madu Multiflora", Price: 100000, Image: "madu.jpg", Stock: 20}
	kopi   = catalog.Product{ID: "prod-012", Name: "Kopi Herbal", Price: 45000, Image: "kopi.jpg", Stock: 3}
	habbat = catalog.Product{ID: "prod-001", Name: "Habbatussauda", Price: 85000, Stock: 0}
)

type failingSetStore struct {
	*storage.MemoryStore
	fail atomic.Bool
}

func (f *failingSetStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail.Load() {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type recordedOp struct {
	op      Op
	outcome Outcome
}

type fakeRecorder struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (r *fakeRecorder) ObserveCartOp(op Op, outcome Outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, recordedOp{op, outcome})
}

type fakeNotifier struct {
	mu      sync.Mutex
	changes []Change
	err     error
}

func (n *fakeNotifier) Notify(ctx context.Context, c Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
	return n.err
}

func TestAdd_NewLineCopiesProduct(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(madu))

	snap, err := s.Add(ctx, "prod-005", 2)
	require.NoError(t, err)

	want := Snapshot{
		Items: []LineItem{{
			ProductID: "prod-005", Name: "Madu Multiflora", UnitPrice: 100000, Quantity: 2, ImageRef: "madu.jpg",
		}},
		TotalQuantity: 2,
		TotalPrice:    200000,
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestAdd_ExceedingStockIsRejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(madu))

	_, err := s.Add(ctx, "prod-005", 19)
	require.NoError(t, err)

	_, err = s.Add(ctx, "prod-005", 2)
	var exceeded *StockExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, 20, exceeded.Remaining)
	require.Equal(t, 21, exceeded.Requested)

	line, ok := s.Snapshot().Line("prod-005")
	require.True(t, ok)
	require.Equal(t, 19, line.Quantity)
}

func TestAdd_UnknownProduct(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(madu))

	_, err := s.Add(context.Background(), "prod-999", 1)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.ErrorIs(t, err, ErrValidationUnavailable)
	require.True(t, s.Snapshot().Empty())
}

func TestAdd_LookupFailureIsFailClosed(t *testing.T) {
	cat := newFakeCatalog(madu)
	cat.err = catalog.ErrUnavailable
	s := NewStore(storage.NewMemoryStore(), cat)

	_, err := s.Add(context.Background(), "prod-005", 1)
	require.ErrorIs(t, err, ErrValidationUnavailable)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "prod-005", verr.ProductID)
	require.True(t, s.Snapshot().Empty())
}

func TestAdd_OutOfStockProduct(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(habbat))

	_, err := s.Add(context.Background(), "prod-001", 1)
	var exceeded *StockExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Zero(t, exceeded.Remaining)
}

func TestInvalidQuantities(t *testing.T) {
	ctx := context.Background()
	cat := newFakeCatalog(madu)
	s := NewStore(storage.NewMemoryStore(), cat)

	tests := map[string]func() error{
		"add zero":     func() error { _, err := s.Add(ctx, "prod-005", 0); return err },
		"add negative": func() error { _, err := s.Add(ctx, "prod-005", -3); return err },
		"set negative": func() error { _, err := s.SetQuantity(ctx, "prod-005", -1); return err },
	}
	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, call(), ErrInvalidQuantity)
		})
	}
	require.Zero(t, cat.calls.Load(), "invalid quantities must not reach the catalog")
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	cat := newFakeCatalog(madu, kopi)
	s := NewStore(storage.NewMemoryStore(), cat)
	_, err := s.Add(ctx, "prod-005", 1)
	require.NoError(t, err)

	snap, err := s.SetQuantity(ctx, "prod-005", 5)
	require.NoError(t, err)
	require.Equal(t, 5, snap.TotalQuantity)
	require.Equal(t, int64(500000), snap.TotalPrice)

	_, err = s.SetQuantity(ctx, "prod-005", 21)
	var exceeded *StockExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, 20, exceeded.Remaining)
	require.Equal(t, 5, s.Snapshot().TotalQuantity)

	snap, err = s.SetQuantity(ctx, "prod-012", 2)
	require.NoError(t, err, "absent line is a no-op")
	require.Len(t, snap.Items, 1)
}

func TestSetQuantityZeroRemovesWithoutLookup(t *testing.T) {
	ctx := context.Background()
	cat := newFakeCatalog(madu)
	rec := &fakeRecorder{}
	s := NewStore(storage.NewMemoryStore(), cat, WithRecorder(rec))
	_, err := s.Add(ctx, "prod-005", 3)
	require.NoError(t, err)
	calls := cat.calls.Load()

	cat.err = catalog.ErrUnavailable
	snap, err := s.SetQuantity(ctx, "prod-005", 0)
	require.NoError(t, err)
	require.True(t, snap.Empty())
	require.Equal(t, calls, cat.calls.Load())
	require.Equal(t, recordedOp{OpSet, OutcomeRemoved}, rec.ops[len(rec.ops)-1])
}

func TestIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(kopi))

	_, err := s.Increment(ctx, "prod-012")
	require.ErrorIs(t, err, ErrItemNotInCart)
	_, err = s.Decrement(ctx, "prod-012")
	require.ErrorIs(t, err, ErrItemNotInCart)

	_, err = s.Add(ctx, "prod-012", 2)
	require.NoError(t, err)

	snap, err := s.Increment(ctx, "prod-012")
	require.NoError(t, err)
	require.Equal(t, 3, snap.TotalQuantity)

	_, err = s.Increment(ctx, "prod-012")
	var exceeded *StockExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, 3, exceeded.Remaining)

	for want := 2; want >= 1; want-- {
		snap, err = s.Decrement(ctx, "prod-012")
		require.NoError(t, err)
		require.Equal(t, want, snap.TotalQuantity)
	}
	snap, err = s.Decrement(ctx, "prod-012")
	require.NoError(t, err)
	require.True(t, snap.Empty())
}

func TestRemoveAndReset(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(madu, kopi))
	_, err := s.Add(ctx, "prod-005", 1)
	require.NoError(t, err)
	_, err = s.Add(ctx, "prod-012", 1)
	require.NoError(t, err)

	snap, err := s.Remove(ctx, "prod-999")
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)

	snap, err = s.Remove(ctx, "prod-005")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	require.Equal(t, "prod-012", snap.Items[0].ProductID)

	snap, err = s.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, Snapshot{Items: []LineItem{}}, snap)
}

func TestInsertionOrderIsPreserved(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(madu, kopi, habbat))
	_, err := s.Add(ctx, "prod-012", 1)
	require.NoError(t, err)
	_, err = s.Add(ctx, "prod-005", 1)
	require.NoError(t, err)
	_, err = s.Add(ctx, "prod-012", 1)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Equal(t, "prod-012", snap.Items[0].ProductID)
	require.Equal(t, "prod-005", snap.Items[1].ProductID)
	require.Equal(t, 2, snap.Items[0].Quantity)
}

func TestPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	cat := newFakeCatalog(madu, kopi)

	first := NewStore(store, cat)
	_, err := first.Add(ctx, "prod-005", 2)
	require.NoError(t, err)
	_, err = first.Add(ctx, "prod-012", 1)
	require.NoError(t, err)

	second := NewStore(store, cat)
	require.NoError(t, second.Load(ctx))
	if diff := cmp.Diff(first.Snapshot(), second.Snapshot()); diff != "" {
		t.Fatalf("reloaded cart differs (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	tests := map[string]struct {
		stored []byte
		want   []LineItem
	}{
		"missing": {
			want: []LineItem{},
		},
		"corrupt": {
			stored: []byte("{not json"),
			want:   []LineItem{},
		},
		"folding saturates instead of wrapping": {
			stored: []byte(`[{"id":"a","price":10,"qty":` + strconv.Itoa(math.MaxInt) + `},{"id":"a","qty":5}]`),
			want:   []LineItem{{ProductID: "a", UnitPrice: 10, Quantity: math.MaxInt}},
		},
		"drops invalid lines and folds duplicates": {
			stored: []byte(`[{"id":"a","name":"A","price":10,"qty":1},{"id":"","qty":2},{"id":"b","qty":0},{"id":"a","qty":2}]`),
			want:   []LineItem{{ProductID: "a", Name: "A", UnitPrice: 10, Quantity: 3}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemoryStore()
			if tc.stored != nil {
				require.NoError(t, store.Set(ctx, StorageKey, tc.stored))
			}
			s := NewStore(store, newFakeCatalog())
			require.NoError(t, s.Load(ctx))
			if diff := cmp.Diff(tc.want, s.Snapshot().Items); diff != "" {
				t.Fatalf("items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := &failingSetStore{MemoryStore: storage.NewMemoryStore()}
	s := NewStore(store, newFakeCatalog(madu))
	_, err := s.Add(ctx, "prod-005", 1)
	require.NoError(t, err)

	store.fail.Store(true)
	_, err = s.Add(ctx, "prod-005", 1)
	require.ErrorIs(t, err, ErrPersist)
	require.Equal(t, 1, s.Snapshot().TotalQuantity)

	_, err = s.Reset(ctx)
	require.ErrorIs(t, err, ErrPersist)
	require.Equal(t, 1, s.Snapshot().TotalQuantity)
}

func TestNotifierReceivesAcceptedChanges(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := &fakeNotifier{err: errors.New("broker down")}
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(madu),
		WithNotifier(n),
		WithClock(func() time.Time { return at }),
	)

	_, err := s.Add(ctx, "prod-005", 1)
	require.NoError(t, err, "notifier errors are not returned")
	_, err = s.Add(ctx, "prod-005", 100)
	require.Error(t, err)
	_, err = s.Remove(ctx, "prod-999")
	require.NoError(t, err)
	_, err = s.Reset(ctx)
	require.NoError(t, err)

	require.Len(t, n.changes, 2)
	require.Equal(t, OpAdd, n.changes[0].Op)
	require.Equal(t, OutcomeAdded, n.changes[0].Outcome)
	require.Equal(t, "prod-005", n.changes[0].ProductID)
	require.Equal(t, at, n.changes[0].At)
	require.Equal(t, OutcomeCleared, n.changes[1].Outcome)
	require.True(t, n.changes[1].Snapshot.Empty())
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(madu))
	snap, err := s.Add(ctx, "prod-005", 1)
	require.NoError(t, err)

	snap.Items[0].Quantity = 99
	require.Equal(t, 1, s.Snapshot().TotalQuantity)
}

// Quantities never exceed stock no matter how adds interleave when
// mutations are serialized per product.
func TestSerializedMutationsRespectStock(t *testing.T) {
	ctx := context.Background()
	cat := newFakeCatalog(kopi)
	cat.onGet = func() { time.Sleep(time.Millisecond) }
	s := NewStore(storage.NewMemoryStore(), cat, WithSerializedMutations())

	var wg sync.WaitGroup
	var accepted atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Add(ctx, "prod-012", 1); err == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(3), accepted.Load())
	require.Equal(t, 3, s.Snapshot().TotalQuantity)
}

func TestStockChangeBetweenCalls(t *testing.T) {
	ctx := context.Background()
	cat := newFakeCatalog(madu)
	s := NewStore(storage.NewMemoryStore(), cat)
	_, err := s.Add(ctx, "prod-005", 5)
	require.NoError(t, err)

	cat.setStock("prod-005", 4)
	_, err = s.Increment(ctx, "prod-005")
	var exceeded *StockExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, 4, exceeded.Remaining)

	snap, err := s.Decrement(ctx, "prod-005")
	require.NoError(t, err, "lowering a quantity never checks stock")
	require.Equal(t, 4, snap.TotalQuantity)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	done := make(chan struct{})
	go func() {
		defer close(done)
		k.Lock("a")()
	}()
	unlock()
	<-done
	require.Empty(t, k.locks)
}

func TestAdd_HugeQuantityOnExistingLine(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := NewStore(store, newFakeCatalog(madu))
	_, err := s.Add(ctx, "prod-005", 1)
	require.NoError(t, err)

	tests := map[string]func() error{
		"add max int":      func() error { _, err := s.Add(ctx, "prod-005", math.MaxInt); return err },
		"add just over":    func() error { _, err := s.Add(ctx, "prod-005", 20); return err },
		"set max int":      func() error { _, err := s.SetQuantity(ctx, "prod-005", math.MaxInt); return err },
		"add near max int": func() error { _, err := s.Add(ctx, "prod-005", math.MaxInt-1); return err },
	}
	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			var exceeded *StockExceededError
			require.ErrorAs(t, call(), &exceeded)
			require.Equal(t, 20, exceeded.Remaining)
			require.Positive(t, exceeded.Requested)
		})
	}

	line, ok := s.Snapshot().Line("prod-005")
	require.True(t, ok)
	require.Equal(t, 1, line.Quantity)

	reloaded := NewStore(store, newFakeCatalog(madu))
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, 1, reloaded.Snapshot().TotalQuantity)
}

// A persisted cart may hold more than the current stock. It loads as is,
// but no operation may raise it further.
func TestLoadedQuantityAboveStock(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, StorageKey, []byte(
		`[{"id":"prod-005","price":100000,"qty":15},{"id":"prod-005","qty":10}]`)))
	s := NewStore(store, newFakeCatalog(madu))
	require.NoError(t, s.Load(ctx))
	require.Equal(t, 25, s.Snapshot().TotalQuantity)

	var exceeded *StockExceededError
	_, err := s.Add(ctx, "prod-005", 1)
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, 26, exceeded.Requested)

	_, err = s.Increment(ctx, "prod-005")
	require.ErrorAs(t, err, &exceeded)

	snap, err := s.Decrement(ctx, "prod-005")
	require.NoError(t, err)
	require.Equal(t, 24, snap.TotalQuantity)

	snap, err = s.SetQuantity(ctx, "prod-005", 20)
	require.NoError(t, err)
	require.Equal(t, 20, snap.TotalQuantity)
}

func TestTotalsSaturate(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	maxQty := strconv.Itoa(math.MaxInt)
	require.NoError(t, store.Set(ctx, StorageKey, []byte(
		`[{"id":"prod-005","price":100000,"qty":`+maxQty+`},{"id":"prod-012","price":45000,"qty":`+maxQty+`}]`)))
	s := NewStore(store, newFakeCatalog(madu, kopi))
	require.NoError(t, s.Load(ctx))

	snap := s.Snapshot()
	require.Equal(t, math.MaxInt, snap.TotalQuantity)
	require.Equal(t, int64(math.MaxInt64), snap.TotalPrice)

	_, err := s.Increment(ctx, "prod-005")
	var exceeded *StockExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, math.MaxInt, exceeded.Requested)

	line, _ := s.Snapshot().Line("prod-005")
	require.Equal(t, math.MaxInt, line.Quantity)
}

func TestSerializedMutationsLockEveryPath(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), newFakeCatalog(madu), WithSerializedMutations())

	tests := map[string]func() error{
		"set zero":  func() error { _, err := s.SetQuantity(ctx, "prod-005", 0); return err },
		"decrement": func() error { _, err := s.Decrement(ctx, "prod-005"); return err },
		"remove":    func() error { _, err := s.Remove(ctx, "prod-005"); return err },
	}
	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Reset(ctx)
			require.NoError(t, err)
			_, err = s.Add(ctx, "prod-005", 3)
			require.NoError(t, err)

			unlock := s.productLocks.Lock("prod-005")
			done := make(chan error, 1)
			go func() { done <- call() }()

			select {
			case <-done:
				t.Fatal("mutation ran while the product lock was held")
			case <-time.After(20 * time.Millisecond):
			}
			unlock()
			require.NoError(t, <-done)
		})
	}
}
