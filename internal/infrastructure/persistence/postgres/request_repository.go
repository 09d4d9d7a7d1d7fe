package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/emailauth/relayer/internal/domain"
	"github.com/emailauth/relayer/internal/infrastructure/persistence"
)

const requestColumns = `
	id, email_address, command, account_code, subject, body,
	chain, dkim_contract_address, template_id, command_params,
	status, attempt_count, next_retry_at, created_at, updated_at
`

type RequestRepository struct {
	db *persistence.DB
}

func NewRequestRepository(db *persistence.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.Request) error {
	query := `
		INSERT INTO requests (
			id, email_address, command, account_code, subject, body,
			chain, dkim_contract_address, template_id, command_params,
			status, attempt_count, next_retry_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`

	row := toDBModel(req)
	_, err := r.db.Pool.Exec(ctx, query,
		row.ID,
		row.EmailAddress,
		row.Command,
		row.AccountCode,
		row.Subject,
		row.Body,
		row.Chain,
		row.DKIMContractAddress,
		row.TemplateID,
		row.CommandParams,
		row.Status,
		row.AttemptCount,
		row.NextRetryAt,
		row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	row := r.db.Pool.QueryRow(ctx, query, id)
	return scanRequest(row, id.String())
}

// UpdateStatus is a pure persistence operation; transition legality is
// the orchestrator's concern.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error {
	query := `UPDATE requests SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewRequestNotFoundError(id.String())
	}

	return nil
}

// FindStuckCreated returns requests whose acknowledgement never went
// out and that are due for another attempt.
func (r *RequestRepository) FindStuckCreated(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) ([]*domain.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE status = $1
		  AND created_at < now() - $2::interval
		  AND attempt_count < $3
		  AND (next_retry_at IS NULL OR next_retry_at <= now())
		ORDER BY created_at ASC
		LIMIT $4
	`

	rows, err := r.db.Pool.Query(ctx, query, string(domain.StatusCreated), olderThan, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("query stuck requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.Request
	for rows.Next() {
		req, err := scanRequestFromRows(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func (r *RequestRepository) MarkAttempt(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) error {
	query := `
		UPDATE requests
		SET attempt_count = attempt_count + 1, next_retry_at = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, nextRetryAt)
	if err != nil {
		return fmt.Errorf("failed to mark attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewRequestNotFoundError(id.String())
	}

	return nil
}

// ExpireEmailSent fails requests whose reply window has elapsed and
// returns how many rows were advanced.
func (r *RequestRepository) ExpireEmailSent(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE requests
		SET status = $1, updated_at = now()
		WHERE status = $2 AND updated_at < now() - $3::interval
	`

	tag, err := r.db.Pool.Exec(ctx, query, string(domain.StatusFailed), string(domain.StatusEmailSent), olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to expire requests: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanRequest(row pgx.Row, id string) (*domain.Request, error) {
	var rec requestRow
	err := row.Scan(
		&rec.ID,
		&rec.EmailAddress,
		&rec.Command,
		&rec.AccountCode,
		&rec.Subject,
		&rec.Body,
		&rec.Chain,
		&rec.DKIMContractAddress,
		&rec.TemplateID,
		&rec.CommandParams,
		&rec.Status,
		&rec.AttemptCount,
		&rec.NextRetryAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewRequestNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}

	return toDomain(rec), nil
}

func scanRequestFromRows(rows pgx.Rows) (*domain.Request, error) {
	var rec requestRow
	err := rows.Scan(
		&rec.ID,
		&rec.EmailAddress,
		&rec.Command,
		&rec.AccountCode,
		&rec.Subject,
		&rec.Body,
		&rec.Chain,
		&rec.DKIMContractAddress,
		&rec.TemplateID,
		&rec.CommandParams,
		&rec.Status,
		&rec.AttemptCount,
		&rec.NextRetryAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}

	return toDomain(rec), nil
}
