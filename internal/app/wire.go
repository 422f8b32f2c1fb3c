package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ordelix/ordelix/internal/discounts"
	"github.com/ordelix/ordelix/internal/fulfillment"
	"github.com/ordelix/ordelix/internal/health"
	"github.com/ordelix/ordelix/internal/integration"
	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/observability"
	"github.com/ordelix/ordelix/internal/platform/db"
	"github.com/ordelix/ordelix/internal/platform/memstore"
	"github.com/ordelix/ordelix/internal/pricing"
	"github.com/ordelix/ordelix/internal/settings"
	"github.com/ordelix/ordelix/internal/shared"
	"github.com/ordelix/ordelix/jobs"
)

// Stores bundles the persistence backends selected by STORE_DRIVER.
type Stores struct {
	Catalog     masterdata.Repository
	Orders      fulfillment.Repository
	Settings    settings.Repository
	Audit       shared.AuditTrail
	Idempotency shared.IdempotencyGuard
	close       func()
}

// Close releases pooled connections.
func (s *Stores) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStores connects the configured backend, migrating postgres when enabled.
func OpenStores(ctx context.Context, cfg *Config, logger *slog.Logger) (*Stores, error) {
	if !cfg.UsesPostgres() {
		store := memstore.New()
		return &Stores{
			Catalog:     store.Products(),
			Orders:      store.Orders(),
			Settings:    store.Settings(),
			Audit:       store.Audit(),
			Idempotency: store.Idempotency(),
		}, nil
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database migrated")
	}
	return &Stores{
		Catalog:     masterdata.NewRepository(pool),
		Orders:      fulfillment.NewRepository(pool),
		Settings:    settings.NewRepository(pool),
		Audit:       shared.NewAuditLogger(pool),
		Idempotency: shared.NewIdempotencyStore(pool),
		close:       pool.Close,
	}, nil
}

// Services holds the wired domain services.
type Services struct {
	Catalog  *masterdata.Service
	Pricing  *pricing.Engine
	Ledger   *fulfillment.Ledger
	Settings *settings.Service
	Health   *health.Service
	Audit    shared.AuditTrail
}

// ServiceDeps carries optional infrastructure for BuildServices.
type ServiceDeps struct {
	Redis    *redis.Client
	Metrics  *observability.Metrics
	Enqueuer *jobs.Client
}

// BuildServices wires domain services over stores. Redis, metrics and the job client are optional.
func BuildServices(cfg *Config, stores *Stores, deps ServiceDeps, logger *slog.Logger) *Services {
	engine := pricing.NewEngine(pricing.WithHourlyRate(cfg.PricingHourlyRate))
	catalog := masterdata.NewService(stores.Catalog, stores.Audit, logger)
	settingsService := settings.NewService(stores.Settings, stores.Audit, logger)

	var reportCache *health.Cache
	if deps.Redis != nil {
		reportCache = health.NewCache(deps.Redis, cfg.HealthCacheTTL)
	}
	healthService := health.NewService(stores.Orders, catalog, settingsService, engine, reportCache, logger)
	if deps.Metrics != nil {
		healthService.OnScore(deps.Metrics.SetHealthScore)
	}

	hooks := integration.NewHooks(healthService, deps.Metrics, deps.Enqueuer, logger)
	ledger := fulfillment.NewLedger(stores.Orders, stores.Audit, stores.Idempotency, hooks, logger)

	return &Services{
		Catalog:  catalog,
		Pricing:  engine,
		Ledger:   ledger,
		Settings: settingsService,
		Health:   healthService,
		Audit:    stores.Audit,
	}
}

// RouterParams assembles router parameters for the wired services.
func (s *Services) RouterParams(cfg *Config, logger *slog.Logger, metrics *observability.Metrics, jobHandler *jobs.Handler) RouterParams {
	return RouterParams{
		Logger:             logger,
		Config:             cfg,
		MasterDataHandler:  masterdata.NewHandler(logger, s.Catalog),
		PricingHandler:     pricing.NewHandler(logger, s.Pricing, s.Catalog),
		DiscountHandler:    discounts.NewHandler(logger, s.Pricing, s.Catalog),
		FulfillmentHandler: fulfillment.NewHandler(logger, s.Ledger),
		HealthHandler:      health.NewHandler(logger, s.Health, cfg.AnalyticsLimit),
		SettingsHandler:    settings.NewHandler(logger, s.Settings, s.Audit),
		JobHandler:         jobHandler,
		Metrics:            metrics,
	}
}
