package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/application/services"
	"github.com/emailauth/relayer/internal/domain"
)

type workerFixture struct {
	requests *services.MockRequestRepository
	sender   *services.MockMailSender
	worker   *AckWorker
}

func newWorkerFixture() *workerFixture {
	requests := services.NewMockRequestRepository()
	ledger := services.NewMockReplyLedger()
	sender := services.NewMockMailSender()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := services.NewNotifier(sender, ledger, logger)
	orchestrator := services.NewOrchestrator(
		requests,
		ledger,
		notifier,
		services.NewMockRenderer(),
		services.NewMockEmailParser(),
		services.NewMockChainRegistry(nil),
		services.NewMockDKIMVerifier(),
		services.NewMockProofGenerator(),
		logger,
	)

	return &workerFixture{
		requests: requests,
		sender:   sender,
		worker:   NewAckWorker(requests, orchestrator, time.Minute, 10, 5, logger),
	}
}

func stuckRequest(t *testing.T, f *workerFixture) *domain.Request {
	t.Helper()
	req, err := domain.NewRequest(
		uuid.New(), "user@example.com", "Send 1 TOKEN to 0xABC", "Auth request", "body",
		domain.TxAuth{Chain: "sepolia", DKIMContractAddress: "0xDK1M", TemplateID: 7},
	)
	require.NoError(t, err)
	req.CreatedAt = time.Now().Add(-10 * time.Minute)
	require.NoError(t, f.requests.Create(context.Background(), req))
	return req
}

func TestAckWorker_ProcessStuck(t *testing.T) {
	t.Run("resends acknowledgement and advances status", func(t *testing.T) {
		f := newWorkerFixture()
		req := stuckRequest(t, f)

		require.NoError(t, f.worker.processStuck(context.Background()))

		sent := f.sender.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "user@example.com", sent[0].To)
		assert.Contains(t, sent[0].BodyPlain, req.ID.String())

		stored, err := f.requests.FindByID(context.Background(), req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEmailSent, stored.Status)
	})

	t.Run("records the attempt when delivery keeps failing", func(t *testing.T) {
		f := newWorkerFixture()
		req := stuckRequest(t, f)
		f.sender.SendFn = func(ctx context.Context, msg application.EmailMessage) (*application.SendReceipt, error) {
			return nil, errors.New("smtp gateway down")
		}

		require.NoError(t, f.worker.processStuck(context.Background()))

		stored, err := f.requests.FindByID(context.Background(), req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCreated, stored.Status)
		assert.Equal(t, 1, stored.AttemptCount)
		require.NotNil(t, stored.NextRetryAt)
		assert.True(t, stored.NextRetryAt.After(time.Now()))
	})

	t.Run("does nothing when no requests are stuck", func(t *testing.T) {
		f := newWorkerFixture()

		require.NoError(t, f.worker.processStuck(context.Background()))

		assert.Empty(t, f.sender.Sent())
	})
}

func TestExpirationWorker_ProcessExpirations(t *testing.T) {
	requests := services.NewMockRequestRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewExpirationWorker(requests, time.Minute, time.Hour, logger)

	req, err := domain.NewRequest(
		uuid.New(), "user@example.com", "cmd", "", "",
		domain.TxAuth{Chain: "sepolia", DKIMContractAddress: "0xDK1M"},
	)
	require.NoError(t, err)
	require.NoError(t, req.MarkEmailSent())
	req.UpdatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, requests.Create(context.Background(), req))

	require.NoError(t, w.processExpirations(context.Background()))

	stored, err := requests.FindByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
}
