package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ordelix/ordelix/internal/discounts"
	"github.com/ordelix/ordelix/internal/fulfillment"
	"github.com/ordelix/ordelix/internal/health"
	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/observability"
	"github.com/ordelix/ordelix/internal/platform/httpx"
	"github.com/ordelix/ordelix/internal/pricing"
	"github.com/ordelix/ordelix/internal/settings"
	"github.com/ordelix/ordelix/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	MasterDataHandler  *masterdata.Handler
	PricingHandler     *pricing.Handler
	DiscountHandler    *discounts.Handler
	FulfillmentHandler *fulfillment.Handler
	HealthHandler      *health.Handler
	SettingsHandler    *settings.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Ordelix defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if params.MasterDataHandler != nil {
			params.MasterDataHandler.MountRoutes(r)
		}
		if params.PricingHandler != nil {
			params.PricingHandler.MountRoutes(r)
		}
		if params.DiscountHandler != nil {
			params.DiscountHandler.MountRoutes(r)
		}
		if params.FulfillmentHandler != nil {
			params.FulfillmentHandler.MountRoutes(r)
		}
		if params.HealthHandler != nil {
			params.HealthHandler.MountRoutes(r)
		}
		if params.SettingsHandler != nil {
			params.SettingsHandler.MountRoutes(r)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), r.Method+" not allowed")
	})

	return r
}
