package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/emailauth/relayer/internal/application"
)

// ExpirationWorker fails requests whose reply window elapsed without a
// completion or an error coming back.
type ExpirationWorker struct {
	requests application.RequestRepository
	interval time.Duration
	replyTTL time.Duration
	logger   *slog.Logger
}

func NewExpirationWorker(
	requests application.RequestRepository,
	interval time.Duration,
	replyTTL time.Duration,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		requests: requests,
		interval: interval,
		replyTTL: replyTTL,
		logger:   logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("expiration worker started", "interval", w.interval, "reply_ttl", w.replyTTL)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.processExpirations(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopping")
			return
		case <-ticker.C:
			if err := w.processExpirations(ctx); err != nil {
				w.logger.Error("expiration processing failed", "error", err)
			}
		}
	}
}

func (w *ExpirationWorker) processExpirations(ctx context.Context) error {
	expired, err := w.requests.ExpireEmailSent(ctx, w.replyTTL)
	if err != nil {
		return err
	}

	if expired > 0 {
		w.logger.Info("expired unanswered requests", "count", expired)
	}

	return nil
}
