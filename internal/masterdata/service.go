package masterdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ordelix/ordelix/internal/shared"
)

// Repository abstracts catalog persistence.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, product Product) error
	UpdateProduct(ctx context.Context, product Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListMaterials(ctx context.Context) ([]Material, error)
	GetMaterial(ctx context.Context, id string) (Material, error)
	CreateMaterial(ctx context.Context, material Material) error
	AdjustMaterialQuantity(ctx context.Context, id string, delta int) (Material, error)

	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id string) (Customer, error)
	CreateCustomers(ctx context.Context, customers []Customer) error
}

// Service coordinates catalog operations.
type Service struct {
	repo     Repository
	audit    shared.AuditTrail
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds Service. audit may be nil.
func NewService(repo Repository, audit shared.AuditTrail, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		audit:    audit,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// ListProducts returns every product.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

// GetProduct loads one product.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// CreateProduct validates and stores a new product.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return Product{}, err
	}
	product := Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		LaborHours:  req.LaborHours,
		Complexity:  req.Complexity,
		Materials:   requirementsFromInput(req.Materials),
		CreatedAt:   s.now().UTC(),
	}
	if product.Complexity == 0 {
		product.Complexity = DefaultComplexity
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	s.record(ctx, shared.AuditLog{
		Action:      "Product Created",
		Entity:      "product",
		EntityID:    product.ID,
		Details:     fmt.Sprintf("New product added: %s", product.Name),
		PerformedBy: "Admin",
	})
	return product, nil
}

// UpdateProduct applies a partial update.
func (s *Service) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return Product{}, err
	}
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.LaborHours != nil {
		product.LaborHours = *req.LaborHours
	}
	if req.Complexity != nil {
		product.Complexity = *req.Complexity
	}
	if req.Materials != nil {
		product.Materials = requirementsFromInput(*req.Materials)
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product. Existing orders keep their product id.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.record(ctx, shared.AuditLog{
		Action:      "Product Deleted",
		Entity:      "product",
		EntityID:    id,
		Details:     fmt.Sprintf("Product removed: %s", id),
		PerformedBy: "Admin",
	})
	return nil
}

// ListMaterials returns every material.
func (s *Service) ListMaterials(ctx context.Context) ([]Material, error) {
	return s.repo.ListMaterials(ctx)
}

// GetMaterial loads one material.
func (s *Service) GetMaterial(ctx context.Context, id string) (Material, error) {
	return s.repo.GetMaterial(ctx, id)
}

// CreateMaterial validates and stores a new material.
func (s *Service) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (Material, error) {
	if err := s.validate.Struct(req); err != nil {
		return Material{}, err
	}
	material := Material{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Quantity:          req.Quantity,
		UnitPrice:         req.UnitPrice,
		LowStockThreshold: DefaultLowStockThreshold,
		CreatedAt:         s.now().UTC(),
	}
	if req.LowStockThreshold != nil {
		material.LowStockThreshold = *req.LowStockThreshold
	}
	if err := s.repo.CreateMaterial(ctx, material); err != nil {
		return Material{}, fmt.Errorf("create material: %w", err)
	}
	return material, nil
}

// Restock adds quantity to on-hand stock. Backlog (negative stock) is paid down first.
func (s *Service) Restock(ctx context.Context, id string, quantity int) (Material, error) {
	if quantity <= 0 {
		return Material{}, ErrInvalidRestock
	}
	material, err := s.repo.AdjustMaterialQuantity(ctx, id, quantity)
	if err != nil {
		return Material{}, err
	}
	s.record(ctx, shared.AuditLog{
		Action:   "Material Restocked",
		Entity:   "material",
		EntityID: id,
		Details:  fmt.Sprintf("%s restocked by %s, now %s", material.Name, shared.FormatCount(quantity), shared.FormatCount(material.Quantity)),
		Meta:     map[string]any{"quantity": quantity, "on_hand": material.Quantity},
	})
	return material, nil
}

// ListCustomers returns customers, seeding the demo roster when none exist.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	if len(customers) > 0 {
		return customers, nil
	}
	seed := DemoCustomers()
	if err := s.repo.CreateCustomers(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed customers: %w", err)
	}
	s.logger.Info("seeded demo customers", slog.Int("count", len(seed)))
	return seed, nil
}

// GetCustomer loads one customer.
func (s *Service) GetCustomer(ctx context.Context, id string) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// DemoCustomers is the roster installed into an empty customer table.
func DemoCustomers() []Customer {
	return []Customer{
		{ID: "c1", Name: "Regular Alice", LoyaltyLevel: LoyaltyNew, PurchaseCount: 1, PaymentBehavior: PaymentGood},
		{ID: "c2", Name: "VIP Bob", LoyaltyLevel: LoyaltyGold, PurchaseCount: 15, PaymentBehavior: PaymentExcellent},
		{ID: "c3", Name: "Silver Carol", LoyaltyLevel: LoyaltySilver, PurchaseCount: 5, PaymentBehavior: PaymentAverage},
	}
}

func (s *Service) record(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	if log.At.IsZero() {
		log.At = s.now().UTC()
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("record audit log", slog.String("action", log.Action), slog.Any("error", err))
	}
}
