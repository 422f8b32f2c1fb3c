package memstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ordelix/ordelix/internal/fulfillment"
	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/shared"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	store := New()
	ctx := context.Background()
	require.NoError(t, store.Products().CreateMaterial(ctx, masterdata.Material{ID: "clay", Name: "Clay", Quantity: 5, LowStockThreshold: 10}))
	require.NoError(t, store.Products().CreateProduct(ctx, masterdata.Product{
		ID:        "mug",
		Name:      "Mug",
		Materials: []masterdata.MaterialRequirement{{MaterialID: "clay", QuantityRequired: 3}},
	}))
	return store
}

func TestLedgerAgainstStore(t *testing.T) {
	store := seeded(t)
	ledger := fulfillment.NewLedger(store.Orders(), store.Audit(), store.Idempotency(), nil, nil)
	ctx := context.Background()

	first, err := ledger.PlaceOrder(ctx, fulfillment.PlaceOrderInput{ProductID: "mug", CustomerID: "c1", Quantity: 1})
	require.NoError(t, err)
	second, err := ledger.PlaceOrder(ctx, fulfillment.PlaceOrderInput{ProductID: "mug", CustomerID: "c1", Quantity: 1})
	require.NoError(t, err)
	require.False(t, first.IsPreOrder)
	require.True(t, second.IsPreOrder)

	clay, err := store.Products().GetMaterial(ctx, "clay")
	require.NoError(t, err)
	require.Equal(t, -1, clay.Quantity)

	logs, err := store.Audit().List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, second.ID, logs[0].EntityID)
	require.Equal(t, "System", logs[0].PerformedBy)
}

func TestWithTxDiscardsOnError(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Orders().WithTx(ctx, func(ctx context.Context, tx fulfillment.TxRepository) error {
		require.NoError(t, tx.SetMaterialQuantity(ctx, "clay", -100))
		require.NoError(t, tx.InsertOrder(ctx, fulfillment.Order{ID: "o1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	clay, err := store.Products().GetMaterial(ctx, "clay")
	require.NoError(t, err)
	require.Equal(t, 5, clay.Quantity)
	orders, err := store.Orders().ListOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestAuditTrailCapsNewestFirst(t *testing.T) {
	store := New()
	trail := store.Audit()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < shared.AuditLogLimit+5; i++ {
		require.NoError(t, trail.Record(ctx, shared.AuditLog{
			Action:   "Product Created",
			Entity:   "product",
			EntityID: fmt.Sprintf("p%d", i),
			At:       base.Add(time.Duration(i) * time.Minute),
		}))
	}
	logs, err := trail.List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, shared.AuditLogLimit)
	require.Equal(t, fmt.Sprintf("p%d", shared.AuditLogLimit+4), logs[0].EntityID)
	require.Equal(t, "p5", logs[len(logs)-1].EntityID)

	require.Error(t, trail.Record(ctx, shared.AuditLog{Action: "x"}))
}

func TestCatalogNotFound(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.Products().GetProduct(ctx, "nope")
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = store.Products().AdjustMaterialQuantity(ctx, "nope", 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = store.Orders().GetOrder(ctx, "nope")
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, store.Products().DeleteProduct(ctx, "nope"), shared.ErrNotFound)
}

func TestCreateCustomersSkipsExisting(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.Products().CreateCustomers(ctx, masterdata.DemoCustomers()))
	require.NoError(t, store.Products().CreateCustomers(ctx, masterdata.DemoCustomers()))

	customers, err := store.Products().ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 3)
}

func TestIdempotencyGuard(t *testing.T) {
	guard := New().Idempotency()
	ctx := context.Background()

	require.NoError(t, guard.CheckAndInsert(ctx, "k", "orders"))
	require.ErrorIs(t, guard.CheckAndInsert(ctx, "k", "orders"), shared.ErrConflict)
	require.NoError(t, guard.Delete(ctx, "k"))
	require.NoError(t, guard.CheckAndInsert(ctx, "k", "orders"))
	require.ErrorIs(t, guard.CheckAndInsert(ctx, "", "orders"), shared.ErrInvalidInput)
}
