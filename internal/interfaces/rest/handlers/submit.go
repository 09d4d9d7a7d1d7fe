package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/application/services"
	"github.com/emailauth/relayer/internal/interfaces/rest"
)

type submitRequest struct {
	EmailAddress        string   `json:"email_address"`
	Command             string   `json:"command"`
	AccountCode         *string  `json:"account_code,omitempty"`
	Subject             string   `json:"subject"`
	Body                string   `json:"body"`
	Chain               string   `json:"chain"`
	DKIMContractAddress string   `json:"dkim_contract_address"`
	TemplateID          uint64   `json:"template_id"`
	CommandParams       []string `json:"command_params"`
}

func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	cmd := services.SubmitCommand{
		EmailAddress:        body.EmailAddress,
		Command:             body.Command,
		AccountCode:         body.AccountCode,
		Subject:             body.Subject,
		Body:                body.Body,
		Chain:               body.Chain,
		DKIMContractAddress: body.DKIMContractAddress,
		TemplateID:          body.TemplateID,
		CommandParams:       body.CommandParams,
	}

	req, err := h.orchestrator.Accept(r.Context(), cmd)
	if err != nil {
		if req != nil {
			// The request exists and the retry worker owns the
			// acknowledgement now. Report it accepted.
			h.logger.Warn("acknowledgement deferred to retry worker",
				"request_id", req.ID,
				"error", err)
			rest.WriteJSON(w, http.StatusAccepted, rest.ToRequestResource(req))
			return
		}
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToRequestResource(req))
}
