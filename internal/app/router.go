package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dukaan-erp/dukaan-erp/internal/assistant"
	"github.com/dukaan-erp/dukaan-erp/internal/dashboard"
	"github.com/dukaan-erp/dukaan-erp/internal/expenses"
	"github.com/dukaan-erp/dukaan-erp/internal/inventory"
	"github.com/dukaan-erp/dukaan-erp/internal/payments"
	"github.com/dukaan-erp/dukaan-erp/internal/purchases"
	"github.com/dukaan-erp/dukaan-erp/internal/sales"
	"github.com/dukaan-erp/dukaan-erp/jobs"
	"github.com/dukaan-erp/dukaan-erp/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	InventoryHandler *inventory.Handler
	PurchasesHandler *purchases.Handler
	SalesHandler     *sales.Handler
	PaymentsHandler  *payments.Handler
	ExpensesHandler  *expenses.Handler
	DashboardHandler *dashboard.Handler
	AssistantHandler *assistant.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Dukaan defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/purchases", params.PurchasesHandler.MountRoutes)
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/payments", params.PaymentsHandler.MountRoutes)
	r.Route("/expenses", params.ExpensesHandler.MountRoutes)
	if params.DashboardHandler != nil {
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	}
	if params.AssistantHandler != nil {
		r.Route("/assistant", params.AssistantHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
