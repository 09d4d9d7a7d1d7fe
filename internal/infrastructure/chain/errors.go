package chain

import (
	"errors"
	"fmt"
)

type GatewayError struct {
	Chain      string
	Code       string
	Message    string
	StatusCode int
}

type GatewayErrorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("chain gateway error [%s/%s]: %s (status: %d)", e.Chain, e.Code, e.Message, e.StatusCode)
}

func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode >= 500
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gatewayErr *GatewayError
	ok := errors.As(err, &gatewayErr)
	return gatewayErr, ok
}
