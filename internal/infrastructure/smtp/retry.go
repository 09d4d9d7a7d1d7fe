package smtp

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/config"
)

// RetrySender wraps a MailSender with bounded retries. The notifier
// itself never retries; this decorator is the single place delivery
// retry policy lives, wired in at startup.
type RetrySender struct {
	inner      application.MailSender
	baseDelay  time.Duration
	maxRetries int
}

func NewRetrySender(inner application.MailSender, cfg config.RetryConfig) application.MailSender {
	return &RetrySender{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: int(cfg.MaxRetries),
	}
}

func (r *RetrySender) Send(ctx context.Context, msg application.EmailMessage) (*application.SendReceipt, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		receipt, err := r.inner.Send(ctx, msg)
		if err == nil {
			return receipt, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Helper: to check retryable errors
func isRetryable(err error) bool {
	var channelErr *ChannelError
	if errors.As(err, &channelErr) {
		return channelErr.IsRetryable()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetrySender) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
