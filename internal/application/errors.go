package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidReply      = "INVALID_REPLY"
	ErrCodeEventProcessing   = "EVENT_PROCESSING"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeNotificationStuck = "NOTIFICATION_PIPELINE"
)

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewInvalidReplyError covers duplicate, replayed, or unparseable
// replies. Handlers answer these without any body so the sender cannot
// distinguish a rejected reply from an accepted one.
func NewInvalidReplyError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidReply,
		Message:    "Reply rejected",
		HTTPStatus: http.StatusOK,
		Err:        err,
	}
}

func NewEventProcessingError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeEventProcessing,
		Message:    "Event could not be processed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewTimeoutError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeTimeout,
		Message:    "Request timed out",
		HTTPStatus: http.StatusRequestTimeout,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewNotificationStuckError flags that a notification went out but its
// bookkeeping failed, so a future reply cannot be correlated. Surfaced
// for operational alerting, never swallowed.
func NewNotificationStuckError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotificationStuck,
		Message:    "Notification sent but could not be tracked",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
