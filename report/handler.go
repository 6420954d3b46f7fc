package report

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dukaan-erp/dukaan-erp/internal/platform/httpx"
	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

// Handler wires HTTP endpoints for reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   shared.Authorizer
}

// NewHandler constructs report handler.
func NewHandler(logger *slog.Logger, service *Service, authz shared.Authorizer) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.salesReport)
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	actorID := shared.ActorFromContext(r.Context())
	allowed, err := h.authz.Allowed(r.Context(), actorID, shared.PermReportView)
	if err != nil {
		h.logger.Error("authorize report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !allowed {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", shared.ErrPermissionDenied.Error())
		return
	}

	q := r.URL.Query()
	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date, want YYYY-MM-DD")
			return
		}
		from = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date, want YYYY-MM-DD")
			return
		}
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	if from.After(to) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must not be after to")
		return
	}

	if q.Get("format") == "html" {
		html, err := h.service.RenderHTML(r.Context(), from, to)
		if err != nil {
			h.logger.Error("render sales report", slog.Any("error", err))
			httpx.Problem(w, http.StatusBadGateway, "Report Failed", "could not render report")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
		return
	}

	pdf, err := h.service.RenderPDF(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("render sales report", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Report Failed", "could not render report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sales-report.pdf"`)
	_, _ = w.Write(pdf)
}
