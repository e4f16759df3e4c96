package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-bookstore/internal/model"
	"go-bookstore/pkg/apierror"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store pinger
}

func NewHealthHandler(store pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Welcome to the Bookstore API"})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		writeError(w, apierror.New("UNAVAILABLE", "store unreachable", "", http.StatusServiceUnavailable))
		return
	}

	writeJSON(w, http.StatusOK, model.HealthResponse{Status: "ok"})
}
