package payments

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dukaan-erp/dukaan-erp/internal/platform/httpx"
	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

// Handler wires HTTP endpoints for the payments module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs payments handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/daily", h.listDaily)
	r.Post("/rebuild", h.rebuild)
}

func (h *Handler) listDaily(w http.ResponseWriter, r *http.Request) {
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
		to = t
	}
	payments, err := h.service.ListRange(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("list daily payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) rebuild(w http.ResponseWriter, r *http.Request) {
	rebuilt, err := h.service.RebuildAll(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrPermissionDenied) {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
			return
		}
		h.logger.Error("rebuild daily payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"days": rebuilt})
}
