package postgres

import (
	"time"

	"github.com/google/uuid"
)

// requestRow mirrors the requests table.
type requestRow struct {
	ID                  uuid.UUID
	EmailAddress        string
	Command             string
	AccountCode         *string
	Subject             string
	Body                string
	Chain               string
	DKIMContractAddress string
	TemplateID          int64
	CommandParams       []string
	Status              string
	AttemptCount        int
	NextRetryAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
