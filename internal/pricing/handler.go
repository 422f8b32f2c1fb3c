package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/platform/httpx"
	"github.com/ordelix/ordelix/internal/shared"
)

// Catalog resolves the records a quote needs.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (masterdata.Product, error)
	ListMaterials(ctx context.Context) ([]masterdata.Material, error)
}

// Handler exposes price recommendations.
type Handler struct {
	logger  *slog.Logger
	engine  *Engine
	catalog Catalog
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, engine *Engine, catalog Catalog) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, engine: engine, catalog: catalog}
}

// MountRoutes registers pricing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pricing", h.quote)
}

// Quote loads product and materials and prices the product.
func Quote(ctx context.Context, engine *Engine, catalog Catalog, productID string) (masterdata.Product, []masterdata.Material, Recommendation, error) {
	if productID == "" {
		return masterdata.Product{}, nil, Recommendation{}, ErrProductRequired
	}
	product, err := catalog.GetProduct(ctx, productID)
	if err != nil {
		return masterdata.Product{}, nil, Recommendation{}, err
	}
	materials, err := catalog.ListMaterials(ctx)
	if err != nil {
		return masterdata.Product{}, nil, Recommendation{}, err
	}
	return product, materials, engine.Recommend(product, masterdata.IndexMaterials(materials)), nil
}

// ErrProductRequired indicates a quote request without a product id.
var ErrProductRequired = fmt.Errorf("productId is required: %w", shared.ErrInvalidInput)

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	_, _, rec, err := Quote(r.Context(), h.engine, h.catalog, r.URL.Query().Get("productId"))
	if err != nil {
		h.logger.Warn("price quote failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}
