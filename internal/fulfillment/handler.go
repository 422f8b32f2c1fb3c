package fulfillment

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ordelix/ordelix/internal/platform/httpx"
)

// IdempotencyHeader carries the optional client-supplied dedup key.
const IdempotencyHeader = "Idempotency-Key"

// Handler wires HTTP endpoints for orders.
type Handler struct {
	logger *slog.Logger
	ledger *Ledger
}

// NewHandler constructs the orders handler.
func NewHandler(logger *slog.Logger, ledger *Ledger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, ledger: ledger}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.showOrder)
	r.Put("/orders/{id}/status", h.setStatus)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ledger.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("list orders failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.ledger.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var input PlaceOrderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input.IdempotencyKey = r.Header.Get(IdempotencyHeader)
	order, err := h.ledger.PlaceOrder(r.Context(), input)
	if err != nil {
		h.logger.Warn("place order failed", slog.String("product_id", input.ProductID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"order": order, "success": true})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.ledger.SetStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.logger.Warn("set order status failed", slog.String("order_id", chi.URLParam(r, "id")), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order": order, "success": true})
}
