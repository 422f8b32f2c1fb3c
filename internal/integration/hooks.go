package integration

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ordelix/ordelix/internal/fulfillment"
)

// CacheInvalidator drops derived analytics once the ledger changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Recorder counts ledger activity.
type Recorder interface {
	ObserveOrderPlaced(preOrder bool)
	ObserveStatusChange(from, to string)
}

// Enqueuer schedules follow-up background work.
type Enqueuer interface {
	EnqueueLowStockScan(ctx context.Context) error
}

// Hooks reacts to committed ledger events. Every dependency is optional.
type Hooks struct {
	cache    CacheInvalidator
	recorder Recorder
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewHooks constructs integration hooks.
func NewHooks(cache CacheInvalidator, recorder Recorder, enqueuer Enqueuer, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{cache: cache, recorder: recorder, enqueuer: enqueuer, logger: logger}
}

// HandleOrderPlaced refreshes analytics and schedules a stock scan when materials moved.
func (h *Hooks) HandleOrderPlaced(ctx context.Context, evt fulfillment.OrderPlacedEvent) error {
	if h == nil {
		return nil
	}
	if evt.Order.ID == "" {
		return errors.New("integration: order id required")
	}
	if h.recorder != nil {
		h.recorder.ObserveOrderPlaced(evt.Order.IsPreOrder)
	}
	if evt.Order.IsPreOrder {
		h.logger.Info("order accepted as pre-order",
			slog.String("order_id", evt.Order.ID),
			slog.String("product_id", evt.Order.ProductID))
	}
	var errs []error
	if err := h.invalidate(ctx); err != nil {
		errs = append(errs, err)
	}
	if h.enqueuer != nil && stockMoved(evt.Movements) {
		if err := h.enqueuer.EnqueueLowStockScan(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleOrderStatusChanged refreshes analytics after a transition.
func (h *Hooks) HandleOrderStatusChanged(ctx context.Context, evt fulfillment.OrderStatusChangedEvent) error {
	if h == nil {
		return nil
	}
	if evt.OrderID == "" {
		return errors.New("integration: order id required")
	}
	if h.recorder != nil {
		h.recorder.ObserveStatusChange(string(evt.From), string(evt.To))
	}
	if evt.From == evt.To {
		return nil
	}
	return h.invalidate(ctx)
}

func (h *Hooks) invalidate(ctx context.Context) error {
	if h.cache == nil {
		return nil
	}
	return h.cache.Invalidate(ctx)
}

func stockMoved(movements []fulfillment.StockMovement) bool {
	for _, m := range movements {
		if m.After != m.Before {
			return true
		}
	}
	return false
}
