package masterdata

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ordelix/ordelix/internal/shared"
)

type memoryRepo struct {
	products  map[string]Product
	materials map[string]Material
	customers []Customer
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[string]Product), materials: make(map[string]Material)}
}

func (r *memoryRepo) ListProducts(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepo) GetProduct(ctx context.Context, id string) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%s: %w", id, ErrProductNotFound)
	}
	return p, nil
}

func (r *memoryRepo) CreateProduct(ctx context.Context, product Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *memoryRepo) UpdateProduct(ctx context.Context, product Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return ErrProductNotFound
	}
	r.products[product.ID] = product
	return nil
}

func (r *memoryRepo) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryRepo) ListMaterials(ctx context.Context) ([]Material, error) {
	out := make([]Material, 0, len(r.materials))
	for _, m := range r.materials {
		out = append(out, m)
	}
	return out, nil
}

func (r *memoryRepo) GetMaterial(ctx context.Context, id string) (Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return Material{}, ErrMaterialNotFound
	}
	return m, nil
}

func (r *memoryRepo) CreateMaterial(ctx context.Context, material Material) error {
	r.materials[material.ID] = material
	return nil
}

func (r *memoryRepo) AdjustMaterialQuantity(ctx context.Context, id string, delta int) (Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return Material{}, ErrMaterialNotFound
	}
	m.Quantity += delta
	r.materials[id] = m
	return m, nil
}

func (r *memoryRepo) ListCustomers(ctx context.Context) ([]Customer, error) {
	return append([]Customer(nil), r.customers...), nil
}

func (r *memoryRepo) GetCustomer(ctx context.Context, id string) (Customer, error) {
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return Customer{}, ErrCustomerNotFound
}

func (r *memoryRepo) CreateCustomers(ctx context.Context, customers []Customer) error {
	r.customers = append(r.customers, customers...)
	return nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (a *memoryAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func (a *memoryAudit) List(ctx context.Context) ([]shared.AuditLog, error) {
	return a.logs, nil
}

func newTestService() (*Service, *memoryRepo, *memoryAudit) {
	repo := newMemoryRepo()
	audit := &memoryAudit{}
	svc := NewService(repo, audit, nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) })
	return svc, repo, audit
}

func TestCreateProductDefaultsComplexity(t *testing.T) {
	svc, repo, audit := newTestService()
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "Candle",
		LaborHours: 1.5,
		Materials:  []MaterialRequirementInput{{MaterialID: "wax", QuantityRequired: 2}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, product.ID)
	require.Equal(t, DefaultComplexity, product.Complexity)
	require.Equal(t, []MaterialRequirement{{MaterialID: "wax", QuantityRequired: 2}}, product.Materials)
	require.Contains(t, repo.products, product.ID)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "Product Created", audit.logs[0].Action)
	require.Equal(t, "New product added: Candle", audit.logs[0].Details)
	require.Equal(t, "Admin", audit.logs[0].PerformedBy)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{Name: "", LaborHours: 1})
	require.Error(t, err)

	_, err = svc.CreateProduct(context.Background(), CreateProductRequest{Name: "Vase", Complexity: 9})
	require.Error(t, err)
}

func TestUpdateProductPartial(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Mug", LaborHours: 2, Complexity: 3})
	require.NoError(t, err)

	hours := 4.0
	updated, err := svc.UpdateProduct(ctx, product.ID, UpdateProductRequest{LaborHours: &hours})
	require.NoError(t, err)
	require.Equal(t, "Mug", updated.Name)
	require.Equal(t, 3, updated.Complexity)
	require.InDelta(t, 4.0, updated.LaborHours, 0.0001)

	_, err = svc.UpdateProduct(ctx, "missing", UpdateProductRequest{LaborHours: &hours})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	svc, repo, audit := newTestService()
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Bowl"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	require.NotContains(t, repo.products, product.ID)
	require.Equal(t, "Product Deleted", audit.logs[len(audit.logs)-1].Action)

	require.ErrorIs(t, svc.DeleteProduct(ctx, product.ID), ErrProductNotFound)
}

func TestCreateMaterialDefaultsThreshold(t *testing.T) {
	svc, _, _ := newTestService()

	material, err := svc.CreateMaterial(context.Background(), CreateMaterialRequest{Name: "Wax", Quantity: 40, UnitPrice: 0.5})
	require.NoError(t, err)
	require.Equal(t, DefaultLowStockThreshold, material.LowStockThreshold)
	require.False(t, material.IsLowStock())

	threshold := 50
	material, err = svc.CreateMaterial(context.Background(), CreateMaterialRequest{Name: "Wick", Quantity: 40, LowStockThreshold: &threshold})
	require.NoError(t, err)
	require.True(t, material.IsLowStock())
}

func TestRestock(t *testing.T) {
	svc, repo, audit := newTestService()
	ctx := context.Background()
	repo.materials["m1"] = Material{ID: "m1", Name: "Clay", Quantity: -4, LowStockThreshold: 10}

	material, err := svc.Restock(ctx, "m1", 1500)
	require.NoError(t, err)
	require.Equal(t, 1496, material.Quantity)
	require.Equal(t, "Clay restocked by 1,500, now 1,496", audit.logs[0].Details)

	_, err = svc.Restock(ctx, "m1", 0)
	require.ErrorIs(t, err, ErrInvalidRestock)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Restock(ctx, "nope", 3)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListCustomersSeedsDemoRoster(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	customers, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 3)
	require.Equal(t, LoyaltyGold, customers[1].LoyaltyLevel)
	require.Len(t, repo.customers, 3)

	customers, err = svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 3)
	require.Len(t, repo.customers, 3)

	customer, err := svc.GetCustomer(ctx, "c3")
	require.NoError(t, err)
	require.True(t, customer.IsRepeat())
}

func TestIndexKeepsFirstDuplicate(t *testing.T) {
	materials := IndexMaterials([]Material{{ID: "a", Quantity: 1}, {ID: "b", Quantity: 7}, {ID: "a", Quantity: 2}})
	require.Len(t, materials, 2)
	require.Equal(t, 1, materials["a"].Quantity)

	products := IndexProducts([]Product{{ID: "p", Name: "Mug"}, {ID: "p", Name: "Vase"}})
	require.Len(t, products, 1)
	require.Equal(t, "Mug", products["p"].Name)
}
