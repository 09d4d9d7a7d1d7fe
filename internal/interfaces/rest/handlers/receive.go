package handlers

import (
	"io"
	"net/http"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/domain"
	"github.com/emailauth/relayer/internal/interfaces/rest"
)

// ReceiveEmail ingests a raw inbound email. The body is the full RFC
// 5322 message, not JSON.
func (h *Handlers) ReceiveEmail(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	event, err := h.orchestrator.ProcessInbound(r.Context(), string(raw))
	if err != nil {
		if svcErr, ok := application.IsServiceError(err); ok && svcErr.Code == application.ErrCodeInvalidReply {
			h.logger.Info("inbound email rejected", "error", err)
		} else {
			h.logger.Error("inbound email processing failed", "error", err)
		}
		rest.WriteError(w, err)
		return
	}

	h.logger.Info("inbound email processed", "event", eventKind(event))
	w.WriteHeader(http.StatusOK)
}

func eventKind(event domain.EmailEvent) string {
	switch event.(type) {
	case domain.CommandEvent:
		return "command"
	case domain.AckEvent:
		return "ack"
	case domain.CompletionEvent:
		return "completion"
	case domain.ErrorEvent:
		return "error"
	default:
		return "unknown"
	}
}
