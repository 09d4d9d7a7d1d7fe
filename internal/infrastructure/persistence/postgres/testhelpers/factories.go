package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/emailauth/relayer/internal/domain"
)

// NewRequest returns a valid CREATED request for testing.
func NewRequest(t *testing.T) *domain.Request {
	t.Helper()

	req, err := domain.NewRequest(
		uuid.New(),
		"user-"+uuid.New().String()[:8]+"@example.com",
		"Send 1 TOKEN to 0xABC",
		"Auth request",
		"Please confirm your transfer",
		domain.TxAuth{
			Chain:               "sepolia",
			DKIMContractAddress: "0xDK1M",
			TemplateID:          7,
			CommandParams:       []string{"0xABC", "1"},
		},
	)
	require.NoError(t, err)

	return req
}

// NewRequestWithCode returns a CREATED request carrying an account code.
func NewRequestWithCode(t *testing.T, code string) *domain.Request {
	req := NewRequest(t)
	req.AccountCode = &code
	return req
}
