package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/interfaces/rest"
)

func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(fmt.Errorf("invalid request id: %w", err)))
		return
	}

	req, err := h.orchestrator.Status(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToRequestResource(req))
}
