package prover_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailauth/relayer/internal/config"
	"github.com/emailauth/relayer/internal/domain"
	"github.com/emailauth/relayer/internal/infrastructure/prover"
)

func testRequest() *domain.Request {
	req, _ := domain.NewRequest(uuid.New(), "user@example.com", "Send 1 TOKEN to 0xABC", "Auth request", "body", domain.TxAuth{
		Chain:               "sepolia",
		DKIMContractAddress: "0xDK1M",
		TemplateID:          7,
	})
	code := "123"
	req.AccountCode = &code
	return req
}

func TestHTTPClient_GenerateProof(t *testing.T) {
	t.Run("posts email and returns proof", func(t *testing.T) {
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/prove", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]any{
				"proof": domain.EmailProof{
					DomainName:    "example.com",
					PublicKeyHash: "0xhash",
					Timestamp:     1700000000,
				},
			})
		}))
		defer server.Close()

		client := prover.NewHTTPClient(config.ProverConfig{URL: server.URL, ConnTimeout: 5 * time.Second})
		req := testRequest()

		proof, err := client.GenerateProof(context.Background(), "raw email bytes", req)

		require.NoError(t, err)
		assert.Equal(t, "example.com", proof.DomainName)
		assert.Equal(t, "raw email bytes", gotBody["raw_email"])
		assert.Equal(t, req.ID.String(), gotBody["request_id"])
		assert.Equal(t, "123", gotBody["account_code"])
		assert.Equal(t, "sepolia", gotBody["chain"])
	})

	t.Run("maps prover error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "circuit_mismatch",
				"message": "unsupported template",
			})
		}))
		defer server.Close()

		client := prover.NewHTTPClient(config.ProverConfig{URL: server.URL, ConnTimeout: 5 * time.Second})

		_, err := client.GenerateProof(context.Background(), "raw", testRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "circuit_mismatch")
		assert.Contains(t, err.Error(), "unsupported template")
	})
}
