package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/emailauth/relayer/internal/domain"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type RequestResource struct {
	ID           uuid.UUID `json:"id"`
	EmailAddress string    `json:"email_address"`
	Command      string    `json:"command"`
	Status       string    `json:"status"`
	Chain        string    `json:"chain"`
	AttemptCount int       `json:"attempt_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToRequestResource(req *domain.Request) RequestResource {
	return RequestResource{
		ID:           req.ID,
		EmailAddress: req.EmailAddress,
		Command:      req.Command,
		Status:       string(req.Status),
		Chain:        req.TxAuth.Chain,
		AttemptCount: req.AttemptCount,
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
	}
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(SuccessResponse{Success: true, Data: data})
}
