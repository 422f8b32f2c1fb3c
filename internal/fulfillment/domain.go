package fulfillment

import (
	"fmt"
	"time"

	"github.com/ordelix/ordelix/internal/shared"
)

// Status enumerates order lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Fulfilled reports whether the order counts towards revenue.
func (s Status) Fulfilled() bool {
	return s == StatusCompleted || s == StatusShipped
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	status := Status(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidStatus)
	}
	return status, nil
}

// Order is a placed order. IsPreOrder is fixed at creation.
type Order struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	CustomerID    string    `json:"customerId"`
	Quantity      int       `json:"quantity"`
	PriceType     string    `json:"priceType,omitempty"`
	Status        Status    `json:"status"`
	IsPreOrder    bool      `json:"isPreOrder"`
	OriginalPrice float64   `json:"originalPrice"`
	Discount      float64   `json:"discount"`
	FinalPrice    float64   `json:"finalPrice"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PlaceOrderInput carries the caller-confirmed order terms.
type PlaceOrderInput struct {
	ProductID      string  `json:"productId" validate:"required"`
	CustomerID     string  `json:"customerId" validate:"required"`
	Quantity       int     `json:"quantity" validate:"required,gte=1"`
	PriceType      string  `json:"priceType" validate:"omitempty,oneof=base recommended premium"`
	OriginalPrice  float64 `json:"originalPrice" validate:"gte=0"`
	Discount       float64 `json:"discount" validate:"gte=0,lte=100"`
	FinalPrice     float64 `json:"finalPrice" validate:"gte=0"`
	IdempotencyKey string  `json:"-"`
	PerformedBy    string  `json:"-"`
}

// SetStatusRequest is the payload for a status change.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// StockMovement records one material decrement made while placing an order.
type StockMovement struct {
	MaterialID string `json:"materialId"`
	Before     int    `json:"before"`
	After      int    `json:"after"`
}

// OrderPlacedEvent is emitted after an order commits.
type OrderPlacedEvent struct {
	Order     Order
	Movements []StockMovement
}

// OrderStatusChangedEvent is emitted after a status change commits.
type OrderStatusChangedEvent struct {
	OrderID   string
	From      Status
	To        Status
	ChangedAt time.Time
}

var (
	// ErrProductNotFound indicates the order references an unknown product.
	ErrProductNotFound = fmt.Errorf("product %w", shared.ErrNotFound)
	// ErrOrderNotFound indicates an unknown order id.
	ErrOrderNotFound = fmt.Errorf("order %w", shared.ErrNotFound)
	// ErrInvalidQuantity indicates a non-positive order quantity.
	ErrInvalidQuantity = fmt.Errorf("order quantity must be at least 1: %w", shared.ErrInvalidInput)
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = fmt.Errorf("invalid order status: %w", shared.ErrInvalidInput)
)
