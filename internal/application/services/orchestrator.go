package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/domain"
)

// Orchestrator drives a request through
// CREATED → EMAIL_SENT → {COMPLETED, FAILED}, turning inbound events
// and collaborator results into notifications and status updates.
type Orchestrator struct {
	requests application.RequestRepository
	ledger   application.ReplyLedger
	notifier *Notifier
	renderer application.Renderer
	parser   application.EmailParser
	chains   application.ChainRegistry
	dkim     application.DKIMVerifier
	prover   application.ProofGenerator
	logger   *slog.Logger
}

func NewOrchestrator(
	requests application.RequestRepository,
	ledger application.ReplyLedger,
	notifier *Notifier,
	renderer application.Renderer,
	parser application.EmailParser,
	chains application.ChainRegistry,
	dkim application.DKIMVerifier,
	prover application.ProofGenerator,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		requests: requests,
		ledger:   ledger,
		notifier: notifier,
		renderer: renderer,
		parser:   parser,
		chains:   chains,
		dkim:     dkim,
		prover:   prover,
		logger:   logger,
	}
}

// SubmitCommand carries a new authentication command into the system.
type SubmitCommand struct {
	EmailAddress        string
	Command             string
	AccountCode         *string
	Subject             string
	Body                string
	Chain               string
	DKIMContractAddress string
	TemplateID          uint64
	CommandParams       []string
}

// Accept creates the request record and dispatches its Command event.
// When the acknowledgement cannot go out, the request stays CREATED and
// the returned error tells the caller it is eligible for retry.
func (o *Orchestrator) Accept(ctx context.Context, cmd SubmitCommand) (*domain.Request, error) {
	req, err := domain.NewRequest(
		uuid.New(),
		cmd.EmailAddress,
		cmd.Command,
		cmd.Subject,
		cmd.Body,
		domain.TxAuth{
			Chain:               cmd.Chain,
			DKIMContractAddress: cmd.DKIMContractAddress,
			TemplateID:          cmd.TemplateID,
			CommandParams:       cmd.CommandParams,
		},
	)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}
	req.AccountCode = cmd.AccountCode

	if err := o.requests.Create(ctx, req); err != nil {
		return nil, application.NewInternalError(err)
	}

	ev := domain.CommandEvent{
		RequestID:    req.ID,
		EmailAddress: req.EmailAddress,
		Command:      req.Command,
		AccountCode:  req.AccountCode,
		Subject:      req.Subject,
		Body:         req.Body,
	}
	if err := o.HandleEmailEvent(ctx, ev); err != nil {
		return req, err
	}

	return req, nil
}

// Status reports a request's current lifecycle state.
func (o *Orchestrator) Status(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	return o.requests.FindByID(ctx, id)
}

// HandleEmailEvent renders, sends, and records the notification each
// event variant demands. The switch is exhaustive over the closed
// EmailEvent set.
func (o *Orchestrator) HandleEmailEvent(ctx context.Context, event domain.EmailEvent) error {
	switch ev := event.(type) {
	case domain.CommandEvent:
		command := ev.Command
		if ev.AccountCode != nil && *ev.AccountCode != "" {
			command = fmt.Sprintf("%s Code %s", command, *ev.AccountCode)
		}

		bodyPlain := fmt.Sprintf("ZK Email request. Your request ID is %s", ev.RequestID)
		bodyHTML, err := o.renderer.Render(TemplateCommand, map[string]any{
			"body":      ev.Body,
			"requestId": ev.RequestID.String(),
			"command":   command,
		})
		if err != nil {
			return err
		}

		msg := application.EmailMessage{
			To:        ev.EmailAddress,
			Subject:   ev.Subject,
			BodyPlain: bodyPlain,
			BodyHTML:  bodyHTML,
		}
		if err := o.notifier.Send(ctx, msg, application.NewExpectsReply(ev.RequestID)); err != nil {
			return err
		}

		if err := o.requests.UpdateStatus(ctx, ev.RequestID, domain.StatusEmailSent); err != nil {
			return application.NewInternalError(err)
		}
		emailEventsTotal.WithLabelValues("command").Inc()
		return nil

	case domain.AckEvent:
		bodyPlain := fmt.Sprintf(
			"Hi %s!\nYour email with the command %s is received.",
			ev.EmailAddr, ev.Command,
		)
		bodyHTML, err := o.renderer.Render(TemplateAcknowledgement, map[string]any{
			"request": ev.Command,
		})
		if err != nil {
			return err
		}

		msg := application.EmailMessage{
			To:        ev.EmailAddr,
			Subject:   "Re: " + ev.OriginalSubject,
			Reference: ev.OriginalMessageID,
			ReplyTo:   ev.OriginalMessageID,
			BodyPlain: bodyPlain,
			BodyHTML:  bodyHTML,
		}
		if err := o.notifier.Send(ctx, msg, nil); err != nil {
			return err
		}
		emailEventsTotal.WithLabelValues("ack").Inc()
		return nil

	case domain.CompletionEvent:
		bodyPlain := fmt.Sprintf("Your request ID is #%s is now complete.", ev.RequestID)
		bodyHTML, err := o.renderer.Render(TemplateCompletion, map[string]any{
			"requestId": ev.RequestID.String(),
		})
		if err != nil {
			return err
		}

		msg := application.EmailMessage{
			To:        ev.EmailAddr,
			Subject:   "Re: " + ev.OriginalSubject,
			Reference: ev.OriginalMessageID,
			ReplyTo:   ev.OriginalMessageID,
			BodyPlain: bodyPlain,
			BodyHTML:  bodyHTML,
		}
		if err := o.notifier.Send(ctx, msg, nil); err != nil {
			return err
		}

		if err := o.requests.UpdateStatus(ctx, ev.RequestID, domain.StatusCompleted); err != nil {
			return application.NewInternalError(err)
		}
		emailEventsTotal.WithLabelValues("completion").Inc()
		return nil

	case domain.ErrorEvent:
		bodyPlain := fmt.Sprintf(
			"An error occurred while processing your request. Error: %s",
			ev.Reason,
		)
		bodyHTML, err := o.renderer.Render(TemplateError, map[string]any{
			"error":         ev.Reason,
			"userEmailAddr": ev.EmailAddr,
		})
		if err != nil {
			return err
		}

		msg := application.EmailMessage{
			To:        ev.EmailAddr,
			Subject:   "Re: " + ev.OriginalSubject,
			Reference: ev.OriginalMessageID,
			ReplyTo:   ev.OriginalMessageID,
			BodyPlain: bodyPlain,
			BodyHTML:  bodyHTML,
		}
		if err := o.notifier.Send(ctx, msg, nil); err != nil {
			return err
		}
		emailEventsTotal.WithLabelValues("error").Inc()
		return nil

	default:
		return fmt.Errorf("unhandled email event %T", event)
	}
}
