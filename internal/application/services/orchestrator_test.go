package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/application/services"
	"github.com/emailauth/relayer/internal/domain"
)

type orchestratorFixture struct {
	requests     *services.MockRequestRepository
	ledger       *services.MockReplyLedger
	sender       *services.MockMailSender
	renderer     *services.MockRenderer
	parser       *services.MockEmailParser
	chainClient  *services.MockChainClient
	prover       *services.MockProofGenerator
	dkim         *services.MockDKIMVerifier
	orchestrator *services.Orchestrator
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		requests:    services.NewMockRequestRepository(),
		ledger:      services.NewMockReplyLedger(),
		sender:      services.NewMockMailSender(),
		renderer:    services.NewMockRenderer(),
		parser:      services.NewMockEmailParser(),
		chainClient: services.NewMockChainClient(),
		prover:      services.NewMockProofGenerator(),
		dkim:        services.NewMockDKIMVerifier(),
	}
	f.ledger.Requests = f.requests

	logger := discardLogger()
	notifier := services.NewNotifier(f.sender, f.ledger, logger)
	registry := services.NewMockChainRegistry(map[string]application.ChainClient{
		"sepolia": f.chainClient,
	})

	f.orchestrator = services.NewOrchestrator(
		f.requests,
		f.ledger,
		notifier,
		f.renderer,
		f.parser,
		registry,
		f.dkim,
		f.prover,
		logger,
	)
	return f
}

func defaultSubmitCommand() services.SubmitCommand {
	return services.SubmitCommand{
		EmailAddress:        "user@example.com",
		Command:             "Send 1 TOKEN to 0xABC",
		Subject:             "Auth request",
		Body:                "Please confirm your transfer",
		Chain:               "sepolia",
		DKIMContractAddress: "0xDK1M",
		TemplateID:          7,
		CommandParams:       []string{"0xABC", "1"},
	}
}

func TestOrchestrator_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("creates request and sends acknowledgement", func(t *testing.T) {
		f := newOrchestratorFixture()

		req, err := f.orchestrator.Accept(ctx, defaultSubmitCommand())

		require.NoError(t, err)
		require.NotNil(t, req)
		assert.Equal(t, domain.StatusEmailSent, req.Status)

		sent := f.sender.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "user@example.com", sent[0].To)
		assert.Equal(t, "Auth request", sent[0].Subject)
		assert.Contains(t, sent[0].BodyPlain, "ZK Email request. Your request ID is "+req.ID.String())
	})

	t.Run("registers a reply expectation for the request", func(t *testing.T) {
		f := newOrchestratorFixture()

		req, err := f.orchestrator.Accept(ctx, defaultSubmitCommand())
		require.NoError(t, err)

		found, err := f.ledger.FindRequestByReply(ctx, "<msg-1@relayer.test>")
		require.NoError(t, err)
		assert.Equal(t, req.ID, found.ID)
	})

	t.Run("passes account code qualified command to the template", func(t *testing.T) {
		f := newOrchestratorFixture()
		var gotCommand string
		f.renderer.RenderFn = func(name string, data map[string]any) (string, error) {
			if name == services.TemplateCommand {
				gotCommand, _ = data["command"].(string)
			}
			return "<html></html>", nil
		}

		cmd := defaultSubmitCommand()
		code := "123"
		cmd.AccountCode = &code

		_, err := f.orchestrator.Accept(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, "Send 1 TOKEN to 0xABC Code 123", gotCommand)
	})

	t.Run("rejects missing email address", func(t *testing.T) {
		f := newOrchestratorFixture()
		cmd := defaultSubmitCommand()
		cmd.EmailAddress = ""

		req, err := f.orchestrator.Accept(ctx, cmd)

		assert.Nil(t, req)
		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeInvalidInput, svcErr.Code)
		assert.Empty(t, f.sender.Sent())
	})

	t.Run("leaves request CREATED when delivery fails", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.sender.SendFn = func(ctx context.Context, msg application.EmailMessage) (*application.SendReceipt, error) {
			return nil, errors.New("smtp gateway down")
		}

		req, err := f.orchestrator.Accept(ctx, defaultSubmitCommand())

		require.Error(t, err)
		require.NotNil(t, req)

		stored, findErr := f.requests.FindByID(ctx, req.ID)
		require.NoError(t, findErr)
		assert.Equal(t, domain.StatusCreated, stored.Status)
	})

	t.Run("fails when template rendering fails", func(t *testing.T) {
		f := newOrchestratorFixture()
		f.renderer.RenderFn = func(name string, data map[string]any) (string, error) {
			return "", domain.NewTemplateNotFoundError(name)
		}

		_, err := f.orchestrator.Accept(ctx, defaultSubmitCommand())

		require.Error(t, err)
		assert.Empty(t, f.sender.Sent())
	})
}

func TestOrchestrator_HandleEmailEvent_Ack(t *testing.T) {
	ctx := context.Background()
	f := newOrchestratorFixture()

	originalID := "<inbound-1@example.com>"
	ev := domain.AckEvent{
		EmailAddr:         "user@example.com",
		Command:           "Send 1 TOKEN to 0xABC",
		OriginalMessageID: &originalID,
		OriginalSubject:   "Send 1 TOKEN to 0xABC",
	}

	require.NoError(t, f.orchestrator.HandleEmailEvent(ctx, ev))

	sent := f.sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Re: Send 1 TOKEN to 0xABC", sent[0].Subject)
	assert.Contains(t, sent[0].BodyPlain, "Hi user@example.com!")
	assert.Contains(t, sent[0].BodyPlain, "Your email with the command Send 1 TOKEN to 0xABC is received.")
	require.NotNil(t, sent[0].Reference)
	assert.Equal(t, originalID, *sent[0].Reference)
}

func TestOrchestrator_HandleEmailEvent_Unhandled(t *testing.T) {
	f := newOrchestratorFixture()

	err := f.orchestrator.HandleEmailEvent(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unhandled email event"))
}
