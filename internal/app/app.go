// Package app wires the storefront components from a config.Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
	"github.com/argea-gh/herbaprimax-V3/internal/checkout"
	"github.com/argea-gh/herbaprimax-V3/internal/config"
	"github.com/argea-gh/herbaprimax-V3/internal/db"
	"github.com/argea-gh/herbaprimax-V3/internal/events"
	httpapi "github.com/argea-gh/herbaprimax-V3/internal/http"
	"github.com/argea-gh/herbaprimax-V3/internal/metrics"
	"github.com/argea-gh/herbaprimax-V3/internal/preferences"
	"github.com/argea-gh/herbaprimax-V3/internal/storage"
	"go.uber.org/zap"
)

type App struct {
	Config config.Config
	Logger *zap.Logger

	Store       storage.Store
	Products    catalog.Source
	Cart        *cart.Store
	Preferences *preferences.Service
	Links       checkout.Builder
	Events      *events.Broadcaster
	Metrics     *metrics.Metrics

	// Mock is set when Products is the mock source.
	Mock *catalog.MockSource

	closers []func() error
}

// New opens storage, the product source and the event publisher, then
// restores the persisted cart. Call Close when done.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Links:   checkout.NewBuilder(cfg.WhatsAppPhone),
		Events:  events.NewBroadcaster(),
		Metrics: metrics.New(),
	}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	store, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	a.Store = store
	a.Preferences = preferences.NewService(store)

	if err := a.openProducts(); err != nil {
		return err
	}

	notifier, err := a.openNotifier()
	if err != nil {
		return err
	}

	opts := []cart.Option{
		cart.WithNotifier(notifier),
		cart.WithRecorder(a.Metrics),
		cart.WithLogger(a.Logger.Named("cart")),
	}
	if a.Config.SerializeMutations {
		opts = append(opts, cart.WithSerializedMutations())
	}
	a.Cart = cart.NewStore(store, a.Products, opts...)
	if err := a.Cart.Load(ctx); err != nil {
		return err
	}
	return nil
}

func (a *App) openStorage(ctx context.Context) (storage.Store, error) {
	cfg := a.Config
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil

	case config.StorageSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)
		return storage.NewSQLiteStore(ctx, sqlDB)

	case config.StoragePostgres:
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, a.Logger); err != nil {
				return nil, fmt.Errorf("db migrate: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		return storage.NewPostgresStore(pool), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func (a *App) openProducts() error {
	cfg := a.Config
	switch cfg.ProductSource {
	case config.SourceMock:
		a.Mock = catalog.NewMockSource(a.Store,
			catalog.WithLatency(cfg.MockLatency),
			catalog.WithLogger(a.Logger.Named("catalog")),
		)
		a.Products = a.Mock
		return nil

	case config.SourceRemote:
		remote, err := catalog.NewRemoteSource(cfg.RemoteBaseURL, &http.Client{Timeout: cfg.RemoteTimeout})
		if err != nil {
			return err
		}
		a.Products = remote
		return nil
	}
	return fmt.Errorf("unknown product source %q", cfg.ProductSource)
}

func (a *App) openNotifier() (cart.Notifier, error) {
	if a.Config.EventsDriver != config.EventsRabbitMQ {
		return a.Events, nil
	}

	conn, err := events.Dial(a.Config.RabbitURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	pub, err := events.NewPublisher(conn, events.PublisherOptions{Producer: "storefront"})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pub.Close)

	a.Logger.Info("publishing cart events", zap.String("exchange", events.EventsExchange))
	return events.Multi{a.Events, pub}, nil
}

func (a *App) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.Deps{
		Logger:           a.Logger.Named("http"),
		Products:         a.Products,
		Cart:             a.Cart,
		Links:            a.Links,
		Preferences:      a.Preferences,
		Events:           a.Events,
		Metrics:          a.Metrics,
		CORSAllowOrigins: a.Config.CORSAllowOrigins,
	})
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
