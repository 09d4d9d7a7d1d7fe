package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Retryable interface for errors that can be retried
type Retryable interface {
	IsRetryable() bool
}

// Domain validation errors
const (
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeRequestNotFound      = "REQUEST_NOT_FOUND"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeTemplateNotFound     = "TEMPLATE_NOT_FOUND"
	ErrCodeRenderFailed         = "RENDER_FAILED"
	ErrCodeDeliveryFailed       = "DELIVERY_FAILED"
	ErrCodeExpectationConflict  = "EXPECTATION_CONFLICT"
	ErrCodeDuplicateReply       = "DUPLICATE_REPLY"
	ErrCodeMalformedEmail       = "MALFORMED_EMAIL"
	ErrCodeVerificationFailed   = "VERIFICATION_FAILED"
	ErrCodeInvalidCommand       = "INVALID_COMMAND"
	ErrCodeProofFailed          = "PROOF_FAILED"
	ErrCodeChainFailed          = "CHAIN_FAILED"
	ErrCodeUnknownChain         = "UNKNOWN_CHAIN"
	ErrCodeTimeout              = "TIMEOUT"
)

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidTransitionError(from, to RequestStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewRequestNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeRequestNotFound,
		Message: fmt.Sprintf("request with ID %s not found", id),
	}
}

func NewTemplateNotFoundError(name string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTemplateNotFound,
		Message: fmt.Sprintf("email template %s not found", name),
	}
}

func NewRenderError(name string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeRenderFailed,
		Message: fmt.Sprintf("failed to render template %s", name),
		Err:     err,
	}
}

func NewDeliveryError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeDeliveryFailed,
		Message: "failed to deliver email",
		Err:     err,
	}
}

func NewExpectationConflictError(messageID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeExpectationConflict,
		Message: fmt.Sprintf("an expectation already exists for message %s", messageID),
	}
}

func NewDuplicateReplyError(messageID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateReply,
		Message: fmt.Sprintf("reply %s was already consumed", messageID),
	}
}

func NewMalformedEmailError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeMalformedEmail,
		Message: "inbound email could not be parsed",
		Err:     err,
	}
}

func NewVerificationError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeVerificationFailed,
		Message: "domain-key verification failed",
		Err:     err,
	}
}

func NewInvalidCommandError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCommand,
		Message: "command parameters could not be encoded",
		Err:     err,
	}
}

func NewProofError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeProofFailed,
		Message: "proof generation failed",
		Err:     err,
	}
}

func NewChainError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeChainFailed,
		Message: "chain submission failed",
		Err:     err,
	}
}

func NewUnknownChainError(chain string) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnknownChain,
		Message: fmt.Sprintf("no client configured for chain %s", chain),
	}
}

func NewTimeoutError(operation string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf("timeout waiting for %s", operation),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
