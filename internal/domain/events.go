package domain

import "github.com/google/uuid"

// EmailEvent is the closed set of notification-producing events the
// orchestrator reacts to. Each inbound email or pipeline outcome maps
// to exactly one variant; the orchestrator switches over all of them
// and treats an unknown variant as a programming error.
type EmailEvent interface {
	emailEvent()
}

// CommandEvent signals that a new command was accepted and an
// acknowledgement must go out, tied to the request awaiting a reply.
type CommandEvent struct {
	RequestID    uuid.UUID
	EmailAddress string
	Command      string
	AccountCode  *string
	Subject      string
	Body         string
}

// AckEvent confirms raw receipt of an email without touching the chain
// pipeline and without registering any new reply expectation.
type AckEvent struct {
	EmailAddr         string
	Command           string
	OriginalMessageID *string
	OriginalSubject   string
}

// CompletionEvent signals that verification, proving, and chain
// submission all succeeded for the request.
type CompletionEvent struct {
	EmailAddr         string
	RequestID         uuid.UUID
	OriginalSubject   string
	OriginalMessageID *string
}

// ErrorEvent signals that a pipeline stage failed; Reason carries the
// human-readable cause shown to the user.
type ErrorEvent struct {
	EmailAddr         string
	Reason            string
	OriginalSubject   string
	OriginalMessageID *string
}

func (CommandEvent) emailEvent()    {}
func (AckEvent) emailEvent()        {}
func (CompletionEvent) emailEvent() {}
func (ErrorEvent) emailEvent()      {}
