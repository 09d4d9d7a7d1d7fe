package rest

import (
	"encoding/json"
	"net/http"

	"github.com/emailauth/relayer/internal/application"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteError maps application errors to HTTP responses. Invalid-reply
// rejections answer 200 with an empty body so the sender learns nothing
// about ledger state.
func WriteError(w http.ResponseWriter, err error) {
	if svcErr, ok := application.IsServiceError(err); ok && svcErr.Code == application.ErrCodeInvalidReply {
		w.WriteHeader(http.StatusOK)
		return
	}

	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)

	response := ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    errorCode,
			Message: err.Error(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
