package smtp

import (
	"errors"
	"fmt"
)

type ChannelError struct {
	Code       string
	Message    string
	StatusCode int
}

type ChannelErrorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("mail channel error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

func (e *ChannelError) IsRetryable() bool {
	return e.StatusCode >= 500
}

func IsChannelError(err error) (*ChannelError, bool) {
	var channelErr *ChannelError
	ok := errors.As(err, &channelErr)
	return channelErr, ok
}
