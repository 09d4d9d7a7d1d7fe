package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emailauth/relayer/internal/domain"
	"github.com/emailauth/relayer/internal/infrastructure/persistence"
)

// ReplyLedger persists outbound-message expectations and consumed reply
// identifiers. The consumed_replies primary key is the atomic gate that
// keeps duplicate deliveries of one reply from both entering the
// pipeline.
type ReplyLedger struct {
	db *persistence.DB
}

func NewReplyLedger(db *persistence.DB) *ReplyLedger {
	return &ReplyLedger{db: db}
}

func (l *ReplyLedger) IsValidReply(ctx context.Context, messageID string) (bool, error) {
	query := `SELECT NOT EXISTS (SELECT 1 FROM consumed_replies WHERE message_id = $1)`

	var valid bool
	if err := l.db.Pool.QueryRow(ctx, query, messageID).Scan(&valid); err != nil {
		return false, fmt.Errorf("failed to check reply validity: %w", err)
	}

	return valid, nil
}

// ConsumeReply records that the reply id was processed. The insert is
// the check: a second consumer of the same id hits the primary key and
// gets DUPLICATE_REPLY.
func (l *ReplyLedger) ConsumeReply(ctx context.Context, messageID string) error {
	query := `INSERT INTO consumed_replies (message_id, consumed_at) VALUES ($1, $2)`

	_, err := l.db.Pool.Exec(ctx, query, messageID, time.Now())
	if err != nil {
		if persistence.IsUniqueViolation(err) {
			return domain.NewDuplicateReplyError(messageID)
		}
		return fmt.Errorf("failed to consume reply: %w", err)
	}

	return nil
}

func (l *ReplyLedger) InsertExpectedReply(ctx context.Context, messageID string, requestID *uuid.UUID) error {
	query := `INSERT INTO expected_replies (message_id, request_id, created_at) VALUES ($1, $2, $3)`

	_, err := l.db.Pool.Exec(ctx, query, messageID, requestID, time.Now())
	if err != nil {
		if persistence.IsUniqueViolation(err) {
			return domain.NewExpectationConflictError(messageID)
		}
		return fmt.Errorf("failed to insert expected reply: %w", err)
	}

	return nil
}

// FindRequestByReply resolves an In-Reply-To identifier to the request
// whose acknowledgement it answers.
func (l *ReplyLedger) FindRequestByReply(ctx context.Context, messageID string) (*domain.Request, error) {
	query := `
		SELECT
			r.id, r.email_address, r.command, r.account_code, r.subject, r.body,
			r.chain, r.dkim_contract_address, r.template_id, r.command_params,
			r.status, r.attempt_count, r.next_retry_at, r.created_at, r.updated_at
		FROM requests r
		JOIN expected_replies e ON e.request_id = r.id
		WHERE e.message_id = $1
	`

	row := l.db.Pool.QueryRow(ctx, query, messageID)
	return scanRequest(row, messageID)
}
