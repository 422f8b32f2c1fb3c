package health

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ordelix/ordelix/internal/fulfillment"
	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/settings"
)

// OrderSource lists every order.
type OrderSource interface {
	ListOrders(ctx context.Context) ([]fulfillment.Order, error)
}

// CatalogSource lists products, materials and customers.
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]masterdata.Product, error)
	ListMaterials(ctx context.Context) ([]masterdata.Material, error)
	ListCustomers(ctx context.Context) ([]masterdata.Customer, error)
}

// SettingsSource reads the settings bag.
type SettingsSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// ScoreObserver is notified of each freshly computed score.
type ScoreObserver func(score int)

// Service loads a snapshot, computes the report and caches it.
type Service struct {
	orders   OrderSource
	catalog  CatalogSource
	settings SettingsSource
	pricer   Pricer
	cache    *Cache
	logger   *slog.Logger
	group    singleflight.Group
	observe  ScoreObserver
}

// NewService wires the snapshot sources with the pricer and cache. cache may be nil.
func NewService(orders OrderSource, catalog CatalogSource, settingsSrc SettingsSource, pricer Pricer, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orders: orders, catalog: catalog, settings: settingsSrc, pricer: pricer, cache: cache, logger: logger}
}

// OnScore registers an observer for computed scores.
func (s *Service) OnScore(fn ScoreObserver) {
	s.observe = fn
}

// Report returns the cached report or computes a fresh one. Concurrent callers share one computation.
func (s *Service) Report(ctx context.Context) (Report, error) {
	key, err := s.cache.BuildKey(ctx, "health", "report")
	if err != nil {
		s.logger.Warn("health cache unavailable", slog.Any("error", err))
		return s.compute(ctx)
	}

	ch := s.group.DoChan(key, func() (any, error) {
		var report Report
		err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
			return s.compute(ctx)
		})
		return report, err
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

// Refresh invalidates the cache and recomputes the report.
func (s *Service) Refresh(ctx context.Context) (Report, error) {
	if err := s.Invalidate(ctx); err != nil {
		return Report{}, err
	}
	return s.Report(ctx)
}

// Invalidate drops cached reports.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Snapshot loads every input concurrently.
func (s *Service) Snapshot(ctx context.Context) (Input, error) {
	var in Input
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		orders, err := s.orders.ListOrders(ctx)
		in.Orders = orders
		return err
	})
	g.Go(func() error {
		products, err := s.catalog.ListProducts(ctx)
		in.Products = products
		return err
	})
	g.Go(func() error {
		materials, err := s.catalog.ListMaterials(ctx)
		in.Materials = materials
		return err
	})
	g.Go(func() error {
		customers, err := s.catalog.ListCustomers(ctx)
		in.Customers = customers
		return err
	})
	g.Go(func() error {
		current, err := s.settings.Get(ctx)
		in.Settings = current
		return err
	})

	if err := g.Wait(); err != nil {
		return Input{}, err
	}
	return in, nil
}

func (s *Service) compute(ctx context.Context) (Report, error) {
	in, err := s.Snapshot(ctx)
	if err != nil {
		return Report{}, err
	}
	report := Compute(in, s.pricer)
	s.logger.Debug("health report computed",
		slog.Int("score", report.Score),
		slog.Int("orders", report.Metrics.OrderCount),
		slog.Int("low_stock", report.Metrics.LowStockCount))
	if s.observe != nil {
		s.observe(report.Score)
	}
	return report, nil
}
