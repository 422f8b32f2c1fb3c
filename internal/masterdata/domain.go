package masterdata

import (
	"fmt"
	"time"

	"github.com/ordelix/ordelix/internal/shared"
)

// LoyaltyLevel segments customers for discount eligibility.
type LoyaltyLevel string

const (
	LoyaltyNew    LoyaltyLevel = "new"
	LoyaltySilver LoyaltyLevel = "silver"
	LoyaltyGold   LoyaltyLevel = "gold"
)

// PaymentBehavior grades how reliably a customer pays.
type PaymentBehavior string

const (
	PaymentExcellent PaymentBehavior = "excellent"
	PaymentGood      PaymentBehavior = "good"
	PaymentAverage   PaymentBehavior = "average"
)

const (
	// DefaultLowStockThreshold applies when a material is created without one.
	DefaultLowStockThreshold = 10
	// DefaultComplexity applies when a product is created without one.
	DefaultComplexity = 1
	MinComplexity     = 1
	MaxComplexity     = 5
)

// Material is a stocked input consumed by products.
type Material struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Quantity          int       `json:"quantity"`
	UnitPrice         float64   `json:"unitPrice"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	CreatedAt         time.Time `json:"createdAt"`
}

// IsLowStock reports whether on-hand quantity is at or below the threshold.
// Backlogged (negative) materials are always low.
func (m Material) IsLowStock() bool {
	return m.Quantity <= m.LowStockThreshold
}

// MaterialRequirement is one bill-of-materials line.
type MaterialRequirement struct {
	MaterialID       string `json:"materialId"`
	QuantityRequired int    `json:"quantityRequired"`
}

// Product is a sellable item assembled from materials and labor.
type Product struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	LaborHours  float64               `json:"laborHours"`
	Complexity  int                   `json:"complexity"`
	Materials   []MaterialRequirement `json:"materials"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// Customer is a read-only buyer profile.
type Customer struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	LoyaltyLevel    LoyaltyLevel    `json:"loyaltyLevel"`
	PurchaseCount   int             `json:"purchaseCount"`
	PaymentBehavior PaymentBehavior `json:"paymentBehavior"`
}

// IsRepeat reports whether the customer bought more than once.
func (c Customer) IsRepeat() bool {
	return c.PurchaseCount > 1
}

// MaterialIndex maps material id to material.
type MaterialIndex map[string]Material

// IndexMaterials builds a lookup table; the first occurrence of an id wins.
func IndexMaterials(materials []Material) MaterialIndex {
	idx := make(MaterialIndex, len(materials))
	for _, m := range materials {
		if _, ok := idx[m.ID]; ok {
			continue
		}
		idx[m.ID] = m
	}
	return idx
}

// ProductIndex maps product id to product.
type ProductIndex map[string]Product

// IndexProducts builds a lookup table; the first occurrence of an id wins.
func IndexProducts(products []Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for _, p := range products {
		if _, ok := idx[p.ID]; ok {
			continue
		}
		idx[p.ID] = p
	}
	return idx
}

// MaterialRequirementInput describes a BOM line in requests.
type MaterialRequirementInput struct {
	MaterialID       string `json:"materialId" validate:"required"`
	QuantityRequired int    `json:"quantityRequired" validate:"gte=0"`
}

// CreateProductRequest captures a new product.
type CreateProductRequest struct {
	Name        string                     `json:"name" validate:"required,max=200"`
	Description string                     `json:"description" validate:"max=2000"`
	LaborHours  float64                    `json:"laborHours" validate:"gte=0"`
	Complexity  int                        `json:"complexity" validate:"omitempty,min=1,max=5"`
	Materials   []MaterialRequirementInput `json:"materials" validate:"dive"`
}

// UpdateProductRequest applies partial product changes.
type UpdateProductRequest struct {
	Name        *string                     `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string                     `json:"description,omitempty" validate:"omitempty,max=2000"`
	LaborHours  *float64                    `json:"laborHours,omitempty" validate:"omitempty,gte=0"`
	Complexity  *int                        `json:"complexity,omitempty" validate:"omitempty,min=1,max=5"`
	Materials   *[]MaterialRequirementInput `json:"materials,omitempty" validate:"omitempty,dive"`
}

// CreateMaterialRequest captures a new material.
type CreateMaterialRequest struct {
	Name              string  `json:"name" validate:"required,max=200"`
	Quantity          int     `json:"quantity" validate:"gte=0"`
	UnitPrice         float64 `json:"unitPrice" validate:"gte=0"`
	LowStockThreshold *int    `json:"lowStockThreshold,omitempty" validate:"omitempty,gte=0"`
}

// RestockRequest adds on-hand stock.
type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

var (
	// ErrProductNotFound indicates an unknown product id.
	ErrProductNotFound = fmt.Errorf("product %w", shared.ErrNotFound)
	// ErrMaterialNotFound indicates an unknown material id.
	ErrMaterialNotFound = fmt.Errorf("material %w", shared.ErrNotFound)
	// ErrCustomerNotFound indicates an unknown customer id.
	ErrCustomerNotFound = fmt.Errorf("customer %w", shared.ErrNotFound)
	// ErrInvalidRestock indicates a non-positive restock quantity.
	ErrInvalidRestock = fmt.Errorf("restock quantity must be positive: %w", shared.ErrInvalidInput)
)

func requirementsFromInput(in []MaterialRequirementInput) []MaterialRequirement {
	out := make([]MaterialRequirement, 0, len(in))
	for _, line := range in {
		out = append(out, MaterialRequirement(line))
	}
	return out
}
