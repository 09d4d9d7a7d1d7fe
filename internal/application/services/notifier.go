package services

import (
	"context"
	"log/slog"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/domain"
)

// Notifier delivers a composed message through the outbound mail
// channel and, when the message awaits a reply, records the returned
// message id in the reply ledger. Delivery is attempted exactly once
// here; retry policy belongs to the sender decorator wired in main.
type Notifier struct {
	sender application.MailSender
	ledger application.ReplyLedger
	logger *slog.Logger
}

func NewNotifier(sender application.MailSender, ledger application.ReplyLedger, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		ledger: ledger,
		logger: logger,
	}
}

func (n *Notifier) Send(ctx context.Context, msg application.EmailMessage, expects *application.ExpectsReply) error {
	receipt, err := n.sender.Send(ctx, msg)
	if err != nil {
		return domain.NewDeliveryError(err)
	}

	if expects == nil {
		return nil
	}

	// The email already left; losing this record would orphan the
	// eventual reply, so the failure must reach the caller.
	if err := n.ledger.InsertExpectedReply(ctx, receipt.MessageID, expects.RequestID()); err != nil {
		n.logger.Error("sent notification could not be tracked",
			"to", msg.To,
			"message_id", receipt.MessageID,
			"error", err,
		)
		return application.NewNotificationStuckError(err)
	}

	n.logger.Debug("notification sent",
		"to", msg.To,
		"subject", msg.Subject,
		"message_id", receipt.MessageID,
	)

	return nil
}
