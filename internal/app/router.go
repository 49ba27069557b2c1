package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pitstop-erp/pitstop-erp/internal/aging"
	"github.com/pitstop-erp/pitstop-erp/internal/appointments"
	"github.com/pitstop-erp/pitstop-erp/internal/directory"
	"github.com/pitstop-erp/pitstop-erp/internal/ledger"
	"github.com/pitstop-erp/pitstop-erp/internal/observability"
	"github.com/pitstop-erp/pitstop-erp/internal/parts"
	"github.com/pitstop-erp/pitstop-erp/internal/procurement"
	"github.com/pitstop-erp/pitstop-erp/internal/vehicles"
	"github.com/pitstop-erp/pitstop-erp/internal/workshop"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	DirectoryHandler    *directory.Handler
	VehiclesHandler     *vehicles.Handler
	PartsHandler        *parts.Handler
	AppointmentsHandler *appointments.Handler
	WorkshopHandler     *workshop.Handler
	ProcurementHandler  *procurement.Handler
	LedgerHandler       *ledger.Handler
	AgingHandler        *aging.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Pitstop defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if params.DirectoryHandler != nil {
			params.DirectoryHandler.MountRoutes(r)
		}
		if params.VehiclesHandler != nil {
			r.Route("/vehicles", params.VehiclesHandler.MountRoutes)
		}
		if params.PartsHandler != nil {
			r.Route("/parts", params.PartsHandler.MountRoutes)
		}
		if params.AppointmentsHandler != nil {
			r.Route("/appointments", params.AppointmentsHandler.MountRoutes)
		}
		if params.WorkshopHandler != nil {
			params.WorkshopHandler.MountRoutes(r)
		}
		if params.ProcurementHandler != nil {
			r.Route("/purchase-orders", params.ProcurementHandler.MountRoutes)
		}
		if params.LedgerHandler != nil {
			r.Route("/transactions", params.LedgerHandler.MountRoutes)
		}
		if params.AgingHandler != nil {
			r.Route("/aging", params.AgingHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
