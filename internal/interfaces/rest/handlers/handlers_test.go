package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/application/services"
	"github.com/emailauth/relayer/internal/domain"
	"github.com/emailauth/relayer/internal/interfaces/rest/handlers"
)

type fixture struct {
	requests *services.MockRequestRepository
	ledger   *services.MockReplyLedger
	sender   *services.MockMailSender
	parser   *services.MockEmailParser
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		requests: services.NewMockRequestRepository(),
		ledger:   services.NewMockReplyLedger(),
		sender:   services.NewMockMailSender(),
		parser:   services.NewMockEmailParser(),
	}
	f.ledger.Requests = f.requests

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := services.NewNotifier(f.sender, f.ledger, logger)
	chainClient := services.NewMockChainClient()
	orchestrator := services.NewOrchestrator(
		f.requests,
		f.ledger,
		notifier,
		services.NewMockRenderer(),
		f.parser,
		services.NewMockChainRegistry(map[string]application.ChainClient{"sepolia": chainClient}),
		services.NewMockDKIMVerifier(),
		services.NewMockProofGenerator(),
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHandlers(orchestrator, logger).RegisterRoutes(mux)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	return f
}

func submitBody() map[string]any {
	return map[string]any{
		"email_address":         "user@example.com",
		"command":               "Send 1 TOKEN to 0xABC",
		"subject":               "Auth request",
		"body":                  "Please confirm",
		"chain":                 "sepolia",
		"dkim_contract_address": "0xDK1M",
		"template_id":           7,
		"command_params":        []string{"0xABC", "1"},
	}
}

func postJSON(t *testing.T, url string, body map[string]any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestSubmit(t *testing.T) {
	t.Run("accepts a valid command", func(t *testing.T) {
		f := newFixture(t)

		resp := postJSON(t, f.server.URL+"/api/submit", submitBody())

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		assert.Equal(t, true, envelope["success"])

		data := envelope["data"].(map[string]any)
		assert.Equal(t, "EMAIL_SENT", data["status"])
		assert.Equal(t, "user@example.com", data["email_address"])
		require.Len(t, f.sender.Sent(), 1)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		f := newFixture(t)

		resp, err := http.Post(f.server.URL+"/api/submit", "application/json", strings.NewReader("{"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		assert.Equal(t, false, envelope["success"])
	})

	t.Run("rejects missing required field", func(t *testing.T) {
		f := newFixture(t)
		body := submitBody()
		delete(body, "email_address")

		resp := postJSON(t, f.server.URL+"/api/submit", body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		errDetail := envelope["error"].(map[string]any)
		assert.Equal(t, "INVALID_INPUT", errDetail["code"])
	})

	t.Run("reports accepted when delivery is deferred", func(t *testing.T) {
		f := newFixture(t)
		f.sender.SendFn = func(ctx context.Context, msg application.EmailMessage) (*application.SendReceipt, error) {
			return nil, assert.AnError
		}

		resp := postJSON(t, f.server.URL+"/api/submit", submitBody())

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, "CREATED", data["status"])
	})
}

func TestStatus(t *testing.T) {
	t.Run("returns the stored request", func(t *testing.T) {
		f := newFixture(t)
		resp := postJSON(t, f.server.URL+"/api/submit", submitBody())
		created := decodeEnvelope(t, resp)["data"].(map[string]any)

		statusResp, err := http.Get(f.server.URL + "/api/status/" + created["id"].(string))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, statusResp.StatusCode)
		data := decodeEnvelope(t, statusResp)["data"].(map[string]any)
		assert.Equal(t, created["id"], data["id"])
		assert.Equal(t, "EMAIL_SENT", data["status"])
	})

	t.Run("unknown id gets 404", func(t *testing.T) {
		f := newFixture(t)

		resp, err := http.Get(f.server.URL + "/api/status/" + uuid.New().String())
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		errDetail := decodeEnvelope(t, resp)["error"].(map[string]any)
		assert.Equal(t, "REQUEST_NOT_FOUND", errDetail["code"])
	})

	t.Run("malformed id gets 400", func(t *testing.T) {
		f := newFixture(t)

		resp, err := http.Get(f.server.URL + "/api/status/not-a-uuid")
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestReceiveEmail(t *testing.T) {
	t.Run("accepts a command email", func(t *testing.T) {
		f := newFixture(t)
		f.parser.ParseFn = func(raw string) (*domain.ParsedEmail, error) {
			return &domain.ParsedEmail{
				From:      "user@example.com",
				Subject:   "Send 1 TOKEN to 0xABC",
				MessageID: "<cmd-1@example.com>",
				Raw:       raw,
			}, nil
		}

		resp, err := http.Post(f.server.URL+"/api/receiveEmail", "message/rfc822", strings.NewReader("raw email"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, f.sender.Sent(), 1)
	})

	t.Run("silently drops an invalid reply", func(t *testing.T) {
		f := newFixture(t)
		f.parser.ParseFn = func(raw string) (*domain.ParsedEmail, error) {
			return &domain.ParsedEmail{
				From:      "user@example.com",
				Subject:   "Re: Auth request",
				MessageID: "<reply-1@example.com>",
				InReplyTo: "<never-sent@relayer.test>",
				Raw:       raw,
			}, nil
		}

		resp, err := http.Post(f.server.URL+"/api/receiveEmail", "message/rfc822", strings.NewReader("raw email"))
		require.NoError(t, err)
		defer resp.Body.Close()

		// The sender learns nothing about ledger state.
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Empty(t, body)
		assert.Empty(t, f.sender.Sent())
	})
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeEnvelope(t, resp)["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
}
