package services

import (
	"context"
	"strings"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/domain"
)

// IsValidInbound implements the reply validity check. An email without
// an In-Reply-To header is not a reply to anything tracked and is
// treated as valid; callers route such emails to command handling, not
// the reply pipeline. For replies the ledger read alone does not
// reserve the id; ConsumeReply is the atomic gate.
func (o *Orchestrator) IsValidInbound(ctx context.Context, email *domain.ParsedEmail) (bool, error) {
	if !email.IsReply() {
		return true, nil
	}
	return o.ledger.IsValidReply(ctx, email.InReplyTo)
}

// ProcessInbound handles one raw inbound email end to end: parse,
// validate, consume, run the verification → proof → chain pipeline, and
// emit the resulting event's notification. Rejected replies come back
// as INVALID_REPLY service errors, which callers answer without any
// signal to the sender.
func (o *Orchestrator) ProcessInbound(ctx context.Context, raw string) (domain.EmailEvent, error) {
	email, err := o.parser.Parse(raw)
	if err != nil {
		return nil, application.NewInvalidReplyError(domain.NewMalformedEmailError(err))
	}

	valid, err := o.IsValidInbound(ctx, email)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if !valid {
		repliesRejectedTotal.Inc()
		o.logger.Warn("duplicate reply rejected", "in_reply_to", email.InReplyTo)
		return nil, application.NewInvalidReplyError(domain.NewDuplicateReplyError(email.InReplyTo))
	}

	if !email.IsReply() {
		ev := domain.AckEvent{
			EmailAddr:         email.From,
			Command:           strings.TrimSpace(email.Subject),
			OriginalMessageID: optionalMessageID(email.MessageID),
			OriginalSubject:   email.Subject,
		}
		if err := o.HandleEmailEvent(ctx, ev); err != nil {
			return nil, err
		}
		return ev, nil
	}

	req, err := o.ledger.FindRequestByReply(ctx, email.InReplyTo)
	if err != nil {
		return nil, application.NewInvalidReplyError(err)
	}

	// Conditional insert; the loser of a concurrent duplicate delivery
	// stops here without side effects.
	if err := o.ledger.ConsumeReply(ctx, email.InReplyTo); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeDuplicateReply) {
			repliesRejectedTotal.Inc()
			return nil, application.NewInvalidReplyError(err)
		}
		return nil, application.NewInternalError(err)
	}

	ev := o.runPipeline(ctx, raw, email, req)
	if err := o.HandleEmailEvent(ctx, ev); err != nil {
		return ev, err
	}

	if _, failed := ev.(domain.ErrorEvent); failed {
		if err := o.requests.UpdateStatus(ctx, req.ID, domain.StatusFailed); err != nil {
			return ev, application.NewInternalError(err)
		}
	}

	return ev, nil
}

// runPipeline executes the reply stages in order; the first failure
// short-circuits the rest and becomes the Error event's cause.
func (o *Orchestrator) runPipeline(ctx context.Context, raw string, email *domain.ParsedEmail, req *domain.Request) domain.EmailEvent {
	client, err := o.chains.Client(req.TxAuth.Chain)
	if err != nil {
		return o.pipelineError(email, req, err, "chain_setup")
	}

	if err := o.dkim.VerifyAndRegister(ctx, email, req.TxAuth.DKIMContractAddress, client); err != nil {
		return o.pipelineError(email, req, domain.NewVerificationError(err), "verification")
	}

	params, err := EncodeCommandParams(req.TxAuth.CommandParams)
	if err != nil {
		return o.pipelineError(email, req, domain.NewInvalidCommandError(err), "encoding")
	}

	proof, err := o.prover.GenerateProof(ctx, raw, req)
	if err != nil {
		return o.pipelineError(email, req, domain.NewProofError(err), "proof")
	}

	authMsg := domain.EmailAuthMsg{
		TemplateID:           req.TxAuth.TemplateID,
		CommandParams:        params,
		SkippedCommandPrefix: 0,
		Proof:                *proof,
	}
	if err := client.SubmitAuthMessage(ctx, req, authMsg); err != nil {
		return o.pipelineError(email, req, domain.NewChainError(err), "submission")
	}

	return domain.CompletionEvent{
		EmailAddr:         email.From,
		RequestID:         req.ID,
		OriginalSubject:   email.Subject,
		OriginalMessageID: optionalMessageID(email.MessageID),
	}
}

func (o *Orchestrator) pipelineError(email *domain.ParsedEmail, req *domain.Request, cause error, stage string) domain.EmailEvent {
	pipelineFailuresTotal.WithLabelValues(stage).Inc()
	o.logger.Warn("pipeline stage failed",
		"request_id", req.ID,
		"stage", stage,
		"error", cause,
	)
	return domain.ErrorEvent{
		EmailAddr:         email.From,
		Reason:            cause.Error(),
		OriginalSubject:   email.Subject,
		OriginalMessageID: optionalMessageID(email.MessageID),
	}
}

func optionalMessageID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
