// Package fulfillment places orders against material stock and tracks their status.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/shared"
)

const idempotencyModule = "orders"

// Repository abstracts order persistence for the ledger.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
}

// TxRepository exposes the operations the ledger runs inside one unit of work.
type TxRepository interface {
	GetProduct(ctx context.Context, id string) (masterdata.Product, error)
	// LockMaterials returns the requested materials that exist, held until the unit of work ends.
	LockMaterials(ctx context.Context, ids []string) (masterdata.MaterialIndex, error)
	SetMaterialQuantity(ctx context.Context, id string, quantity int) error
	InsertOrder(ctx context.Context, order Order) error
	GetOrderForUpdate(ctx context.Context, id string) (Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status Status) error
}

// Ledger is the single writer of material stock and order status.
type Ledger struct {
	mu          sync.Mutex
	repo        Repository
	audit       shared.AuditTrail
	idempotency shared.IdempotencyGuard
	integration IntegrationHandler
	logger      *slog.Logger
	validate    *validator.Validate
	now         func() time.Time
}

// NewLedger builds Ledger. audit, idem and integration may be nil.
func NewLedger(repo Repository, audit shared.AuditTrail, idem shared.IdempotencyGuard, integration IntegrationHandler, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		repo:        repo,
		audit:       audit,
		idempotency: idem,
		integration: integration,
		logger:      logger,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// WithNow overrides the ledger clock for testing.
func (l *Ledger) WithNow(fn func() time.Time) {
	if fn != nil {
		l.now = fn
	}
}

// ListOrders returns orders newest first.
func (l *Ledger) ListOrders(ctx context.Context) ([]Order, error) {
	return l.repo.ListOrders(ctx)
}

// GetOrder loads one order.
func (l *Ledger) GetOrder(ctx context.Context, id string) (Order, error) {
	return l.repo.GetOrder(ctx, id)
}

// PlaceOrder records an order and depletes the product's materials.
func (l *Ledger) PlaceOrder(ctx context.Context, input PlaceOrderInput) (Order, error) {
	if input.Quantity < 1 {
		return Order{}, ErrInvalidQuantity
	}
	if err := l.validate.Struct(input); err != nil {
		return Order{}, err
	}

	insertedKey := false
	if l.idempotency != nil && input.IdempotencyKey != "" {
		if err := l.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, idempotencyModule); err != nil {
			return Order{}, err
		}
		insertedKey = true
	}

	var (
		order Order
		alloc Allocation
	)
	l.mu.Lock()
	err := l.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		materials, err := tx.LockMaterials(ctx, RequiredMaterialIDs(product))
		if err != nil {
			return err
		}
		alloc = Allocate(product, materials, input.Quantity)
		for _, mv := range alloc.Movements {
			if err := tx.SetMaterialQuantity(ctx, mv.MaterialID, mv.After); err != nil {
				return err
			}
		}
		order = Order{
			ID:            uuid.NewString(),
			ProductID:     product.ID,
			CustomerID:    input.CustomerID,
			Quantity:      input.Quantity,
			PriceType:     input.PriceType,
			Status:        StatusPending,
			IsPreOrder:    alloc.IsPreOrder,
			OriginalPrice: input.OriginalPrice,
			Discount:      input.Discount,
			FinalPrice:    input.FinalPrice,
			CreatedAt:     l.now().UTC(),
		}
		return tx.InsertOrder(ctx, order)
	})
	l.mu.Unlock()
	if err != nil {
		if insertedKey {
			_ = l.idempotency.Delete(ctx, input.IdempotencyKey)
		}
		return Order{}, err
	}

	l.logger.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("product_id", order.ProductID),
		slog.Int("quantity", order.Quantity),
		slog.Bool("pre_order", order.IsPreOrder))

	l.record(ctx, shared.AuditLog{
		Action:      "Order Placed",
		Entity:      "order",
		EntityID:    order.ID,
		Details:     fmt.Sprintf("Order for %s x%s, total %s", order.ProductID, shared.FormatCount(order.Quantity), shared.FormatAmount(order.FinalPrice)),
		PerformedBy: input.PerformedBy,
		Meta:        map[string]any{"pre_order": order.IsPreOrder, "customer_id": order.CustomerID},
	})

	if l.integration != nil {
		if err := l.integration.HandleOrderPlaced(ctx, OrderPlacedEvent{Order: order, Movements: alloc.Movements}); err != nil {
			l.logger.Warn("order placed hook failed", slog.String("order_id", order.ID), slog.Any("error", err))
		}
	}
	return order, nil
}

// SetStatus moves an order to any valid status. Transitions are not restricted.
func (l *Ledger) SetStatus(ctx context.Context, id string, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	var (
		order    Order
		previous Status
	)
	l.mu.Lock()
	err := l.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous = current.Status
		if err := tx.UpdateOrderStatus(ctx, id, status); err != nil {
			return err
		}
		current.Status = status
		order = current
		return nil
	})
	l.mu.Unlock()
	if err != nil {
		return Order{}, err
	}

	l.record(ctx, shared.AuditLog{
		Action:   "Order Status Updated",
		Entity:   "order",
		EntityID: id,
		Details:  fmt.Sprintf("Order %s moved from %s to %s", id, previous, status),
	})

	if l.integration != nil {
		evt := OrderStatusChangedEvent{OrderID: id, From: previous, To: status, ChangedAt: l.now().UTC()}
		if err := l.integration.HandleOrderStatusChanged(ctx, evt); err != nil {
			l.logger.Warn("status change hook failed", slog.String("order_id", id), slog.Any("error", err))
		}
	}
	return order, nil
}

func (l *Ledger) record(ctx context.Context, log shared.AuditLog) {
	if l.audit == nil {
		return
	}
	if log.At.IsZero() {
		log.At = l.now().UTC()
	}
	if err := l.audit.Record(ctx, log); err != nil {
		l.logger.Warn("record audit log", slog.String("action", log.Action), slog.Any("error", err))
	}
}
