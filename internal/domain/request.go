// Package domain encodes an authentication request and its lifecycle
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents the current state of a request in its lifecycle
type RequestStatus string

const (
	StatusCreated   RequestStatus = "CREATED"
	StatusEmailSent RequestStatus = "EMAIL_SENT"
	StatusCompleted RequestStatus = "COMPLETED"
	StatusFailed    RequestStatus = "FAILED"
)

// IsTerminal reports whether no further transition can occur.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TxAuth carries the on-chain authentication parameters a request was
// submitted with: the target chain, the registry contract holding the
// sender domain's key hashes, and the command template to authorize.
type TxAuth struct {
	Chain               string
	DKIMContractAddress string
	TemplateID          uint64
	CommandParams       []string
}

type Request struct {
	ID           uuid.UUID
	EmailAddress string
	Command      string
	AccountCode  *string
	Subject      string
	Body         string
	TxAuth       TxAuth
	Status       RequestStatus

	CreatedAt    time.Time
	UpdatedAt    time.Time
	AttemptCount int
	NextRetryAt  *time.Time
}

func NewRequest(
	id uuid.UUID,
	emailAddress string,
	command string,
	subject string,
	body string,
	txAuth TxAuth,
) (*Request, error) {
	if id == uuid.Nil {
		return nil, NewMissingRequiredFieldError("request ID")
	}
	if emailAddress == "" {
		return nil, NewMissingRequiredFieldError("email address")
	}
	if command == "" {
		return nil, NewMissingRequiredFieldError("command")
	}
	if txAuth.Chain == "" {
		return nil, NewMissingRequiredFieldError("chain")
	}
	if txAuth.DKIMContractAddress == "" {
		return nil, NewMissingRequiredFieldError("dkim contract address")
	}

	return &Request{
		ID:           id,
		EmailAddress: emailAddress,
		Command:      command,
		Subject:      subject,
		Body:         body,
		TxAuth:       txAuth,
		Status:       StatusCreated,
		CreatedAt:    time.Now(),
	}, nil
}

// FullCommand returns the command text with the account code appended
// as a qualifier when one is present.
func (r *Request) FullCommand() string {
	if r.AccountCode == nil || *r.AccountCode == "" {
		return r.Command
	}
	return r.Command + " Code " + *r.AccountCode
}

func (r *Request) MarkEmailSent() error {
	return r.transition(StatusEmailSent)
}

func (r *Request) Complete() error {
	return r.transition(StatusCompleted)
}

func (r *Request) Fail() error {
	return r.transition(StatusFailed)
}

func (r *Request) transition(target RequestStatus) error {
	if err := r.canTransitionTo(target); err != nil {
		return err
	}
	r.Status = target
	return nil
}

// Status only ever advances forward; terminal states accept nothing.
func (r *Request) canTransitionTo(target RequestStatus) error {
	switch r.Status {
	case StatusCreated:
		return r.allow(target, StatusEmailSent)
	case StatusEmailSent:
		return r.allow(target, StatusCompleted, StatusFailed)
	}
	return NewInvalidTransitionError(r.Status, target)
}

// Helper to check allowed state transitions
func (r *Request) allow(target RequestStatus, allowed ...RequestStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidTransitionError(r.Status, target)
}
