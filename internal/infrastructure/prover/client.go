// Package prover talks to the external proving service that turns a
// verified raw email into a succinct authenticity proof.
package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/config"
	"github.com/emailauth/relayer/internal/domain"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(cfg config.ProverConfig) application.ProofGenerator {
	return &HTTPClient{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

type proveRequest struct {
	RawEmail    string  `json:"raw_email"`
	RequestID   string  `json:"request_id"`
	AccountCode *string `json:"account_code"`
	Chain       string  `json:"chain"`
}

type proveResponse struct {
	Proof domain.EmailProof `json:"proof"`
}

type proverErrorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

func (c *HTTPClient) GenerateProof(ctx context.Context, rawEmail string, req *domain.Request) (*domain.EmailProof, error) {
	body := proveRequest{
		RawEmail:    rawEmail,
		RequestID:   req.ID.String(),
		AccountCode: req.AccountCode,
		Chain:       req.TxAuth.Chain,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	url := fmt.Sprintf("%s/api/prove", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		var proverErr proverErrorResponse
		if err := json.Unmarshal(raw, &proverErr); err != nil {
			return nil, fmt.Errorf("prover returned status %d: %s", resp.StatusCode, string(raw))
		}
		return nil, fmt.Errorf("prover error [%s]: %s", proverErr.Err, proverErr.Message)
	}

	var proveResp proveResponse
	if err := json.NewDecoder(resp.Body).Decode(&proveResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &proveResp.Proof, nil
}
