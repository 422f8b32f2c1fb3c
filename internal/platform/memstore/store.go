// Package memstore keeps every Ordelix record in process memory.
// It backs STORE_DRIVER=memory and demo runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ordelix/ordelix/internal/fulfillment"
	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/settings"
	"github.com/ordelix/ordelix/internal/shared"
)

// Store is a mutex-guarded in-memory repository.
type Store struct {
	mu          sync.RWMutex
	products    []masterdata.Product
	materials   []masterdata.Material
	customers   []masterdata.Customer
	orders      []fulfillment.Order
	settings    *settings.Settings
	audit       []shared.AuditLog
	idempotency map[string]string
	now         func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{idempotency: make(map[string]string), now: time.Now}
}

// Products returns a repository view over products, materials and customers.
func (s *Store) Products() *CatalogRepository { return &CatalogRepository{s: s} }

// Orders returns the ledger repository view.
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

// Settings returns the settings repository view.
func (s *Store) Settings() *SettingsRepository { return &SettingsRepository{s: s} }

// Audit returns the audit trail view.
func (s *Store) Audit() *AuditTrail { return &AuditTrail{s: s} }

// Idempotency returns the idempotency guard view.
func (s *Store) Idempotency() *IdempotencyGuard { return &IdempotencyGuard{s: s} }

// CatalogRepository implements masterdata.Repository.
type CatalogRepository struct{ s *Store }

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]masterdata.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]masterdata.Product, len(r.s.products))
	for i, p := range r.s.products {
		out[i] = cloneProduct(p)
	}
	return out, nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (masterdata.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.s.productIndex(id); i >= 0 {
		return cloneProduct(r.s.products[i]), nil
	}
	return masterdata.Product{}, fmt.Errorf("%s: %w", id, masterdata.ErrProductNotFound)
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, product masterdata.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.productIndex(product.ID) >= 0 {
		return fmt.Errorf("product %s exists: %w", product.ID, shared.ErrConflict)
	}
	r.s.products = append(r.s.products, cloneProduct(product))
	return nil
}

func (r *CatalogRepository) UpdateProduct(ctx context.Context, product masterdata.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.productIndex(product.ID)
	if i < 0 {
		return fmt.Errorf("%s: %w", product.ID, masterdata.ErrProductNotFound)
	}
	r.s.products[i] = cloneProduct(product)
	return nil
}

func (r *CatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.productIndex(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, masterdata.ErrProductNotFound)
	}
	r.s.products = append(r.s.products[:i], r.s.products[i+1:]...)
	return nil
}

func (r *CatalogRepository) ListMaterials(ctx context.Context) ([]masterdata.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]masterdata.Material(nil), r.s.materials...), nil
}

func (r *CatalogRepository) GetMaterial(ctx context.Context, id string) (masterdata.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.s.materialIndex(id); i >= 0 {
		return r.s.materials[i], nil
	}
	return masterdata.Material{}, fmt.Errorf("%s: %w", id, masterdata.ErrMaterialNotFound)
}

func (r *CatalogRepository) CreateMaterial(ctx context.Context, material masterdata.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.materialIndex(material.ID) >= 0 {
		return fmt.Errorf("material %s exists: %w", material.ID, shared.ErrConflict)
	}
	r.s.materials = append(r.s.materials, material)
	return nil
}

func (r *CatalogRepository) AdjustMaterialQuantity(ctx context.Context, id string, delta int) (masterdata.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.materialIndex(id)
	if i < 0 {
		return masterdata.Material{}, fmt.Errorf("%s: %w", id, masterdata.ErrMaterialNotFound)
	}
	r.s.materials[i].Quantity += delta
	return r.s.materials[i], nil
}

func (r *CatalogRepository) ListCustomers(ctx context.Context) ([]masterdata.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]masterdata.Customer(nil), r.s.customers...), nil
}

func (r *CatalogRepository) GetCustomer(ctx context.Context, id string) (masterdata.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return masterdata.Customer{}, fmt.Errorf("%s: %w", id, masterdata.ErrCustomerNotFound)
}

func (r *CatalogRepository) CreateCustomers(ctx context.Context, customers []masterdata.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range customers {
		exists := false
		for _, existing := range r.s.customers {
			if existing.ID == c.ID {
				exists = true
				break
			}
		}
		if !exists {
			r.s.customers = append(r.s.customers, c)
		}
	}
	return nil
}

// OrderRepository implements fulfillment.Repository.
type OrderRepository struct{ s *Store }

// WithTx holds the store write lock for the whole unit of work and applies staged
// writes only when fn succeeds.
func (r *OrderRepository) WithTx(ctx context.Context, fn func(context.Context, fulfillment.TxRepository) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx := &orderTx{s: r.s, quantities: make(map[string]int), statuses: make(map[string]fulfillment.Status)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, qty := range tx.quantities {
		if i := r.s.materialIndex(id); i >= 0 {
			r.s.materials[i].Quantity = qty
		}
	}
	for id, status := range tx.statuses {
		if i := r.s.orderIndex(id); i >= 0 {
			r.s.orders[i].Status = status
		}
	}
	r.s.orders = append(r.s.orders, tx.inserted...)
	return nil
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]fulfillment.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]fulfillment.Order, 0, len(r.s.orders))
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		out = append(out, r.s.orders[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (fulfillment.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.s.orderIndex(id); i >= 0 {
		return r.s.orders[i], nil
	}
	return fulfillment.Order{}, fmt.Errorf("%s: %w", id, fulfillment.ErrOrderNotFound)
}

type orderTx struct {
	s          *Store
	quantities map[string]int
	statuses   map[string]fulfillment.Status
	inserted   []fulfillment.Order
}

func (t *orderTx) GetProduct(ctx context.Context, id string) (masterdata.Product, error) {
	if i := t.s.productIndex(id); i >= 0 {
		return cloneProduct(t.s.products[i]), nil
	}
	return masterdata.Product{}, fmt.Errorf("%s: %w", id, fulfillment.ErrProductNotFound)
}

func (t *orderTx) LockMaterials(ctx context.Context, ids []string) (masterdata.MaterialIndex, error) {
	idx := make(masterdata.MaterialIndex, len(ids))
	for _, id := range ids {
		i := t.s.materialIndex(id)
		if i < 0 {
			continue
		}
		m := t.s.materials[i]
		if qty, ok := t.quantities[id]; ok {
			m.Quantity = qty
		}
		idx[id] = m
	}
	return idx, nil
}

func (t *orderTx) SetMaterialQuantity(ctx context.Context, id string, quantity int) error {
	t.quantities[id] = quantity
	return nil
}

func (t *orderTx) InsertOrder(ctx context.Context, order fulfillment.Order) error {
	t.inserted = append(t.inserted, order)
	return nil
}

func (t *orderTx) GetOrderForUpdate(ctx context.Context, id string) (fulfillment.Order, error) {
	i := t.s.orderIndex(id)
	if i < 0 {
		return fulfillment.Order{}, fmt.Errorf("%s: %w", id, fulfillment.ErrOrderNotFound)
	}
	o := t.s.orders[i]
	if status, ok := t.statuses[id]; ok {
		o.Status = status
	}
	return o, nil
}

func (t *orderTx) UpdateOrderStatus(ctx context.Context, id string, status fulfillment.Status) error {
	if t.s.orderIndex(id) < 0 {
		return fmt.Errorf("%s: %w", id, fulfillment.ErrOrderNotFound)
	}
	t.statuses[id] = status
	return nil
}

// SettingsRepository implements settings.Repository.
type SettingsRepository struct{ s *Store }

func (r *SettingsRepository) Get(ctx context.Context) (settings.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.settings == nil {
		return settings.Default(), nil
	}
	return *r.s.settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, value settings.Settings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings = &value
	return nil
}

// AuditTrail implements shared.AuditTrail, keeping the newest shared.AuditLogLimit entries.
type AuditTrail struct{ s *Store }

func (a *AuditTrail) Record(ctx context.Context, log shared.AuditLog) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if err := log.Normalize(a.s.now()); err != nil {
		return err
	}
	a.s.audit = append([]shared.AuditLog{log}, a.s.audit...)
	if len(a.s.audit) > shared.AuditLogLimit {
		a.s.audit = a.s.audit[:shared.AuditLogLimit]
	}
	return nil
}

func (a *AuditTrail) List(ctx context.Context) ([]shared.AuditLog, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return append([]shared.AuditLog(nil), a.s.audit...), nil
}

// IdempotencyGuard implements shared.IdempotencyGuard.
type IdempotencyGuard struct{ s *Store }

func (g *IdempotencyGuard) CheckAndInsert(ctx context.Context, key, module string) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if key == "" || module == "" {
		return fmt.Errorf("idempotency key and module required: %w", shared.ErrInvalidInput)
	}
	if _, ok := g.s.idempotency[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	g.s.idempotency[key] = module
	return nil
}

func (g *IdempotencyGuard) Delete(ctx context.Context, key string) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	delete(g.s.idempotency, key)
	return nil
}

func (s *Store) productIndex(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) materialIndex(id string) int {
	for i, m := range s.materials {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) orderIndex(id string) int {
	for i, o := range s.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func cloneProduct(p masterdata.Product) masterdata.Product {
	p.Materials = append([]masterdata.MaterialRequirement(nil), p.Materials...)
	return p
}
