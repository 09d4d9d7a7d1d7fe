package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/application/services"
	"github.com/emailauth/relayer/internal/domain"
)

// AckWorker resends command acknowledgements for requests whose first
// delivery attempt failed. A request in CREATED past the grace window
// means the acknowledgement never confirmed, so it goes out again.
type AckWorker struct {
	requests     application.RequestRepository
	orchestrator *services.Orchestrator
	interval     time.Duration
	batchSize    int
	maxAttempts  int
	logger       *slog.Logger
}

func NewAckWorker(
	requests application.RequestRepository,
	orchestrator *services.Orchestrator,
	interval time.Duration,
	batchSize int,
	maxAttempts int,
	logger *slog.Logger,
) *AckWorker {
	return &AckWorker{
		requests:     requests,
		orchestrator: orchestrator,
		interval:     interval,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		logger:       logger,
	}
}

func (w *AckWorker) Start(ctx context.Context) {
	w.logger.Info("ack worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("ack worker stopping")
			return
		case <-ticker.C:
			if err := w.processStuck(ctx); err != nil {
				w.logger.Error("ack retry processing failed", "error", err)
			}
		}
	}
}

func (w *AckWorker) processStuck(ctx context.Context) error {
	stuck, err := w.requests.FindStuckCreated(ctx, w.interval, w.maxAttempts, w.batchSize)
	if err != nil {
		return err
	}

	var resent int
	for _, req := range stuck {
		if err := w.resendAck(ctx, req); err != nil {
			w.logger.Error("ack resend failed",
				"request_id", req.ID,
				"attempt", req.AttemptCount,
				"error", err)
		} else {
			resent++
		}
	}

	if resent > 0 {
		w.logger.Info("resent stuck acknowledgements", "count", resent)
	}

	return nil
}

func (w *AckWorker) resendAck(ctx context.Context, req *domain.Request) error {
	ev := domain.CommandEvent{
		RequestID:    req.ID,
		EmailAddress: req.EmailAddress,
		Command:      req.Command,
		AccountCode:  req.AccountCode,
		Subject:      req.Subject,
		Body:         req.Body,
	}

	if err := w.orchestrator.HandleEmailEvent(ctx, ev); err != nil {
		backoff := time.Duration(1<<req.AttemptCount) * time.Minute
		if markErr := w.requests.MarkAttempt(ctx, req.ID, time.Now().Add(backoff)); markErr != nil {
			w.logger.Error("failed to record retry attempt",
				"request_id", req.ID,
				"error", markErr)
		}
		return err
	}

	return nil
}
