package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/argea-gh/herbaprimax-V3/internal/storage"
	"go.uber.org/zap"
)

const (
	// CatalogKey is the storage key holding the mock catalog.
	CatalogKey = "mock_api_products_v1"

	DefaultLatency = 150 * time.Millisecond
)

// MockSource serves the catalog out of a storage.Store, seeding it on first
// use. Every call waits for an artificial latency so callers exercise their
// asynchronous paths during local development.
type MockSource struct {
	store   storage.Store
	latency time.Duration
	now     func() time.Time
	logger  *zap.Logger

	// mu makes load-modify-save sequences atomic; MockSource is the only
	// writer of CatalogKey.
	mu sync.Mutex
}

type MockOption func(*MockSource)

func WithLatency(d time.Duration) MockOption {
	return func(m *MockSource) { m.latency = d }
}

func WithClock(now func() time.Time) MockOption {
	return func(m *MockSource) { m.now = now }
}

func WithLogger(logger *zap.Logger) MockOption {
	return func(m *MockSource) { m.logger = logger }
}

func NewMockSource(store storage.Store, opts ...MockOption) *MockSource {
	m := &MockSource{
		store:   store,
		latency: DefaultLatency,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockSource) Get(ctx context.Context, id string) (Product, error) {
	if err := m.wait(ctx); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	products, err := m.load(ctx)
	if err != nil {
		return Product{}, err
	}
	idx := indexOf(products, id)
	if idx < 0 {
		return Product{}, ErrNotFound
	}
	return products[idx], nil
}

func (m *MockSource) List(ctx context.Context) ([]Product, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(ctx)
}

func (m *MockSource) PatchStock(ctx context.Context, id string, stock int) (Product, error) {
	if err := m.wait(ctx); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	products, err := m.load(ctx)
	if err != nil {
		return Product{}, err
	}
	idx := indexOf(products, id)
	if idx < 0 {
		return Product{}, ErrNotFound
	}
	if stock < 0 {
		return Product{}, invalidf("stock must be non-negative")
	}
	products[idx].Stock = stock
	if err := m.save(ctx, products); err != nil {
		return Product{}, err
	}
	return products[idx], nil
}

// Create prepends a new product. Fields missing from patch take the catalog
// defaults; the id is generated from the clock unless patch supplies one.
func (m *MockSource) Create(ctx context.Context, patch ProductPatch) (Product, error) {
	if err := m.wait(ctx); err != nil {
		return Product{}, err
	}
	if err := patch.Validate(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	products, err := m.load(ctx)
	if err != nil {
		return Product{}, err
	}

	prod := patch.Apply(Product{
		Stock:       10,
		Category:    "suplemen",
		Benefits:    []string{},
		Composition: []string{},
	})
	if patch.ID != nil && *patch.ID != "" {
		if indexOf(products, *patch.ID) >= 0 {
			return Product{}, invalidf("product %q already exists", *patch.ID)
		}
		prod.ID = *patch.ID
	} else {
		prod.ID = m.nextID(products)
	}

	products = append([]Product{prod}, products...)
	if err := m.save(ctx, products); err != nil {
		return Product{}, err
	}
	return prod, nil
}

func (m *MockSource) Update(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	if err := m.wait(ctx); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	products, err := m.load(ctx)
	if err != nil {
		return Product{}, err
	}
	idx := indexOf(products, id)
	if idx < 0 {
		return Product{}, ErrNotFound
	}
	if err := patch.Validate(); err != nil {
		return Product{}, err
	}
	products[idx] = patch.Apply(products[idx])
	if err := m.save(ctx, products); err != nil {
		return Product{}, err
	}
	return products[idx], nil
}

func (m *MockSource) Delete(ctx context.Context, id string) (Product, error) {
	if err := m.wait(ctx); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	products, err := m.load(ctx)
	if err != nil {
		return Product{}, err
	}
	idx := indexOf(products, id)
	if idx < 0 {
		return Product{}, ErrNotFound
	}
	removed := products[idx]
	products = append(products[:idx], products[idx+1:]...)
	if err := m.save(ctx, products); err != nil {
		return Product{}, err
	}
	return removed, nil
}

// Reset overwrites the stored catalog with the seed records.
func (m *MockSource) Reset(ctx context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seed := SeedProducts()
	if err := m.save(ctx, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func (m *MockSource) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// load reads the catalog, seeding it when the key is absent or unreadable.
func (m *MockSource) load(ctx context.Context) ([]Product, error) {
	var products []Product
	err := storage.LoadJSON(ctx, m.store, CatalogKey, &products)
	switch {
	case err == nil:
		if products == nil {
			products = []Product{}
		}
		return products, nil
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrCorrupt):
		if errors.Is(err, storage.ErrCorrupt) {
			m.logger.Warn("catalog corrupt, reseeding", zap.Error(err))
		}
		seed := SeedProducts()
		if err := m.save(ctx, seed); err != nil {
			return nil, err
		}
		return seed, nil
	default:
		return nil, fmt.Errorf("load catalog: %w", err)
	}
}

func (m *MockSource) save(ctx context.Context, products []Product) error {
	if err := storage.SaveJSON(ctx, m.store, CatalogKey, products); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// nextID derives "prod-NNNNNN" from the last six digits of the millisecond
// clock, stepping forward past ids already taken.
func (m *MockSource) nextID(products []Product) string {
	n := m.now().UnixMilli() % 1_000_000
	for {
		id := fmt.Sprintf("prod-%06d", n)
		if indexOf(products, id) < 0 {
			return id
		}
		n = (n + 1) % 1_000_000
	}
}

func indexOf(products []Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
