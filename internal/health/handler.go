package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ordelix/ordelix/internal/platform/httpx"
)

// Handler exposes the analytics endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	limit   int
}

// NewHandler constructs Handler. limit caps analytics requests per IP per minute; zero disables it.
func NewHandler(logger *slog.Logger, service *Service, limit int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, limit: limit}
}

// MountRoutes registers analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limit > 0 {
			r.Use(httprate.Limit(h.limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Get("/analytics", h.report)
	})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		h.logger.Error("compute health report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
