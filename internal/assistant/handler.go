package assistant

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dukaan-erp/dukaan-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the assistant.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs assistant handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers assistant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/chat", h.chat)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Question string `json:"question"`
	}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	answer, err := h.service.Ask(r.Context(), input.Question)
	if err != nil {
		if errors.Is(err, ErrEmptyQuestion) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("assistant chat", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Assistant Unavailable", "could not produce an answer")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"answer": answer})
}
