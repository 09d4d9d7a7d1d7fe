package handlers

import (
	"log/slog"
	"net/http"

	"github.com/emailauth/relayer/internal/application/services"
)

type Handlers struct {
	orchestrator *services.Orchestrator
	logger       *slog.Logger
}

func NewHandlers(orchestrator *services.Orchestrator, logger *slog.Logger) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// RegisterRoutes mounts the relayer API on the mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/submit", h.Submit)
	mux.HandleFunc("POST /api/receiveEmail", h.ReceiveEmail)
	mux.HandleFunc("GET /api/status/{id}", h.Status)
	mux.HandleFunc("GET /healthz", h.Health)
}
