package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/emailauth/relayer/internal/domain"
)

// ErrorCategory represents the nature of an error for retry logic
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryValidation     ErrorCategory = "VALIDATION"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines error category for retry and logging purposes
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	// Context Errors (Transient - network/timeout issues)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeMalformedEmail,
			domain.ErrCodeDuplicateReply,
			domain.ErrCodeRequestNotFound,
			domain.ErrCodeMissingRequiredField,
			domain.ErrCodeInvalidTransition,
			domain.ErrCodeExpectationConflict:
			return CategoryValidation
		case domain.ErrCodeTemplateNotFound,
			domain.ErrCodeRenderFailed,
			domain.ErrCodeUnknownChain:
			return CategoryInfrastructure
		case domain.ErrCodeVerificationFailed,
			domain.ErrCodeInvalidCommand,
			domain.ErrCodeProofFailed:
			return CategoryPermanent
		case domain.ErrCodeDeliveryFailed,
			domain.ErrCodeChainFailed:
			var retryable domain.Retryable
			if errors.As(err, &retryable) && !retryable.IsRetryable() {
				return CategoryPermanent
			}
			return CategoryTransient
		case domain.ErrCodeTimeout:
			return CategoryTransient
		}
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput, ErrCodeInvalidReply:
			return CategoryValidation
		case ErrCodeInternal, ErrCodeNotificationStuck:
			return CategoryInfrastructure
		case ErrCodeEventProcessing, ErrCodeTimeout:
			return CategoryTransient
		}
	}

	// Default: Transient (safe fallback)
	return CategoryTransient
}

// IsRetryable returns true if the error category suggests retry
func IsRetryable(err error) bool {
	category := CategorizeError(err)
	return category == CategoryTransient || category == CategoryInfrastructure
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField):
		return http.StatusBadRequest
	case domain.IsErrorCode(err, domain.ErrCodeRequestNotFound):
		return http.StatusNotFound
	case domain.IsErrorCode(err, domain.ErrCodeInvalidTransition),
		domain.IsErrorCode(err, domain.ErrCodeExpectationConflict),
		domain.IsErrorCode(err, domain.ErrCodeDuplicateReply):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	// Default to 500
	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}

	return "INTERNAL_ERROR"
}
