package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ordelix/ordelix/internal/platform/httpx"
	"github.com/ordelix/ordelix/internal/shared"
)

// Handler exposes settings and the audit trail.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   shared.AuditTrail
}

// NewHandler constructs Handler. audit may be nil, in which case the log listing is empty.
func NewHandler(logger *slog.Logger, service *Service, audit shared.AuditTrail) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, audit: audit}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings", h.show)
	r.Post("/settings", h.update)
	r.Get("/audit-logs", h.auditLogs)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("load settings failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "settings": s})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.service.Update(r.Context(), req)
	if err != nil {
		h.logger.Error("update settings failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "settings": s})
}

func (h *Handler) auditLogs(w http.ResponseWriter, r *http.Request) {
	logs := []shared.AuditLog{}
	if h.audit != nil {
		var err error
		logs, err = h.audit.List(r.Context())
		if err != nil {
			h.logger.Error("list audit logs failed", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"logs": logs})
}
