// Package chain implements the per-chain transaction gateway client
// and the registry that resolves a request's target chain to one.
package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/config"
	"github.com/emailauth/relayer/internal/domain"
)

type HTTPClient struct {
	chain      string
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(chain string, cfg config.ChainConfig) application.ChainClient {
	return &HTTPClient{
		chain:   chain,
		baseURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

type authMsgRequest struct {
	RequestID            string           `json:"request_id"`
	ContractAddress      string           `json:"contract_address"`
	TemplateID           uint64           `json:"template_id"`
	CommandParams        []string         `json:"command_params"`
	SkippedCommandPrefix uint64           `json:"skipped_command_prefix"`
	Proof                domain.EmailProof `json:"proof"`
}

type dkimCheckRequest struct {
	ContractAddress string `json:"contract_address"`
	Domain          string `json:"domain"`
	PublicKeyHash   string `json:"public_key_hash"`
}

type dkimCheckResponse struct {
	Registered bool `json:"registered"`
}

type submitResponse struct {
	Status string `json:"status"`
	TxHash string `json:"tx_hash"`
}

func (c *HTTPClient) SubmitAuthMessage(ctx context.Context, req *domain.Request, msg domain.EmailAuthMsg) error {
	params := make([]string, 0, len(msg.CommandParams))
	for _, p := range msg.CommandParams {
		params = append(params, hex.EncodeToString(p))
	}

	body := authMsgRequest{
		RequestID:            req.ID.String(),
		ContractAddress:      req.TxAuth.DKIMContractAddress,
		TemplateID:           msg.TemplateID,
		CommandParams:        params,
		SkippedCommandPrefix: msg.SkippedCommandPrefix,
		Proof:                msg.Proof,
	}

	url := fmt.Sprintf("%s/api/emailAuth", c.baseURL)
	_, err := sendRequest[authMsgRequest, submitResponse](c, ctx, url, &body)
	return err
}

func (c *HTTPClient) IsDKIMHashRegistered(ctx context.Context, contractAddress, domainName, publicKeyHash string) (bool, error) {
	body := dkimCheckRequest{
		ContractAddress: contractAddress,
		Domain:          domainName,
		PublicKeyHash:   publicKeyHash,
	}

	url := fmt.Sprintf("%s/api/dkim/check", c.baseURL)
	resp, err := sendRequest[dkimCheckRequest, dkimCheckResponse](c, ctx, url, &body)
	if err != nil {
		return false, err
	}
	return resp.Registered, nil
}

func (c *HTTPClient) RegisterDKIMHash(ctx context.Context, contractAddress, domainName, publicKeyHash string) error {
	body := dkimCheckRequest{
		ContractAddress: contractAddress,
		Domain:          domainName,
		PublicKeyHash:   publicKeyHash,
	}

	url := fmt.Sprintf("%s/api/dkim/register", c.baseURL)
	_, err := sendRequest[dkimCheckRequest, submitResponse](c, ctx, url, &body)
	return err
}

func sendRequest[Req any, Resp any](c *HTTPClient, ctx context.Context, url string, reqBody *Req) (*Resp, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

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
		var gatewayErr GatewayErrorResponse
		if err := json.Unmarshal(raw, &gatewayErr); err != nil {
			return nil, &GatewayError{
				Chain:      c.chain,
				Code:       "gateway_failed",
				Message:    string(raw),
				StatusCode: resp.StatusCode,
			}
		}
		return nil, &GatewayError{
			Chain:      c.chain,
			Code:       gatewayErr.Err,
			Message:    gatewayErr.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var gatewayResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &gatewayResp, nil
}
