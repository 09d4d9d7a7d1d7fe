package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/emailauth/relayer/internal/domain"
)

// EmailMessage is the payload delivered through the outbound mail channel.
type EmailMessage struct {
	To              string            `json:"to"`
	Subject         string            `json:"subject"`
	Reference       *string           `json:"reference"`
	ReplyTo         *string           `json:"reply_to"`
	BodyPlain       string            `json:"body_plain"`
	BodyHTML        string            `json:"body_html"`
	BodyAttachments []EmailAttachment `json:"body_attachments"`
}

type EmailAttachment struct {
	InlineID    string `json:"inline_id"`
	ContentType string `json:"content_type"`
	Contents    []byte `json:"contents"`
}

// SendReceipt is the mail channel's response to a successful delivery.
// MessageID is the provider-assigned identifier replies will reference.
type SendReceipt struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

// ExpectsReply registers that exactly one reply to the outbound message
// is awaited, optionally tied to a request.
type ExpectsReply struct {
	requestID *uuid.UUID
}

func NewExpectsReply(requestID uuid.UUID) *ExpectsReply {
	return &ExpectsReply{requestID: &requestID}
}

func NewExpectsReplyNoRequest() *ExpectsReply {
	return &ExpectsReply{}
}

func (e *ExpectsReply) RequestID() *uuid.UUID {
	return e.requestID
}

// MailSender is the port for the outbound mail channel.
type MailSender interface {
	Send(ctx context.Context, msg EmailMessage) (*SendReceipt, error)
}

// Renderer fills a named template with contextual data.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// EmailParser is the external inbound-mail parser boundary.
type EmailParser interface {
	Parse(raw string) (*domain.ParsedEmail, error)
}

// ProofGenerator is the port for the external proving service.
type ProofGenerator interface {
	GenerateProof(ctx context.Context, rawEmail string, req *domain.Request) (*domain.EmailProof, error)
}

// ChainClient is the port for a single chain's transaction gateway.
type ChainClient interface {
	SubmitAuthMessage(ctx context.Context, req *domain.Request, msg domain.EmailAuthMsg) error
	IsDKIMHashRegistered(ctx context.Context, contractAddress, domainName, publicKeyHash string) (bool, error)
	RegisterDKIMHash(ctx context.Context, contractAddress, domainName, publicKeyHash string) error
}

// ChainRegistry resolves a configured chain name to its client.
type ChainRegistry interface {
	Client(chain string) (ChainClient, error)
}

// DKIMVerifier checks that the inbound email's sending domain key is
// registered with the request's verifier contract, registering it first
// when absent.
type DKIMVerifier interface {
	VerifyAndRegister(ctx context.Context, email *domain.ParsedEmail, contractAddress string, client ChainClient) error
}

// RequestRepository is the lifecycle store for requests.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error
	FindStuckCreated(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) ([]*domain.Request, error)
	MarkAttempt(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) error
	ExpireEmailSent(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ReplyLedger records outbound-message expectations and consumed reply
// identifiers, enforcing at-most-once reply acceptance.
type ReplyLedger interface {
	// IsValidReply reports whether the reply id has not been consumed.
	// Passing this read does not reserve the id; callers must still win
	// ConsumeReply before acting on the reply.
	IsValidReply(ctx context.Context, messageID string) (bool, error)
	// ConsumeReply atomically records consumption; a duplicate id fails
	// with DUPLICATE_REPLY so exactly one concurrent caller proceeds.
	ConsumeReply(ctx context.Context, messageID string) error
	InsertExpectedReply(ctx context.Context, messageID string, requestID *uuid.UUID) error
	FindRequestByReply(ctx context.Context, messageID string) (*domain.Request, error)
}
