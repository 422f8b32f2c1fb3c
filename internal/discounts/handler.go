package discounts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/platform/httpx"
	"github.com/ordelix/ordelix/internal/pricing"
	"github.com/ordelix/ordelix/internal/shared"
)

// Catalog resolves products, materials and customers.
type Catalog interface {
	pricing.Catalog
	GetCustomer(ctx context.Context, id string) (masterdata.Customer, error)
}

// ErrCustomerRequired indicates a discount request without a customer id.
var ErrCustomerRequired = fmt.Errorf("customerId is required: %w", shared.ErrInvalidInput)

// Handler exposes personalised discount recommendations.
type Handler struct {
	logger  *slog.Logger
	engine  *pricing.Engine
	catalog Catalog
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, engine *pricing.Engine, catalog Catalog) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, engine: engine, catalog: catalog}
}

// MountRoutes registers discount routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/discounts", h.recommend)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID := q.Get("customerId")
	if customerID == "" {
		httpx.RespondError(w, ErrCustomerRequired)
		return
	}
	product, materials, quote, err := pricing.Quote(r.Context(), h.engine, h.catalog, q.Get("productId"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.catalog.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Warn("discount lookup failed", slog.String("customer_id", customerID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Recommend(product, customer, materials, quote))
}
