package smtp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/config"
)

// HTTPSender delivers email through the relay's outbound mail service.
type HTTPSender struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPSender(cfg config.SmtpConfig) application.MailSender {
	return &HTTPSender{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPSender) Send(ctx context.Context, msg application.EmailMessage) (*application.SendReceipt, error) {
	url := fmt.Sprintf("%s/api/sendEmail", c.baseURL)
	return sendRequest[application.EmailMessage, application.SendReceipt](c, ctx, http.MethodPost, url, &msg)
}

func sendRequest[Req any, Resp any](c *HTTPSender, ctx context.Context, method, url string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		var channelErrResp ChannelErrorResponse
		if err := json.Unmarshal(body, &channelErrResp); err != nil {
			return nil, &ChannelError{
				Code:       "delivery_failed",
				Message:    string(body),
				StatusCode: resp.StatusCode,
			}
		}
		return nil, &ChannelError{
			Code:       channelErrResp.Err,
			Message:    channelErrResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var channelResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&channelResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &channelResp, nil
}
