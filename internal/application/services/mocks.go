package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/domain"
)

// MockRequestRepository
type MockRequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.Request

	CreateFn           func(ctx context.Context, req *domain.Request) error
	FindByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	UpdateStatusFn     func(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error
	FindStuckCreatedFn func(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) ([]*domain.Request, error)
	MarkAttemptFn      func(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) error
	ExpireEmailSentFn  func(ctx context.Context, olderThan time.Duration) (int64, error)
}

func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{
		requests: make(map[uuid.UUID]*domain.Request),
	}
}

func (m *MockRequestRepository) Create(ctx context.Context, req *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	m.requests[req.ID] = req
	return nil
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	if req, ok := m.requests[id]; ok {
		return req, nil
	}
	return nil, domain.NewRequestNotFoundError(id.String())
}

func (m *MockRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, status)
	}
	req, ok := m.requests[id]
	if !ok {
		return domain.NewRequestNotFoundError(id.String())
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}

func (m *MockRequestRepository) FindStuckCreated(ctx context.Context, olderThan time.Duration, maxAttempts, limit int) ([]*domain.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindStuckCreatedFn != nil {
		return m.FindStuckCreatedFn(ctx, olderThan, maxAttempts, limit)
	}
	var stuck []*domain.Request
	cutoff := time.Now().Add(-olderThan)
	for _, req := range m.requests {
		if req.Status == domain.StatusCreated && req.CreatedAt.Before(cutoff) && req.AttemptCount < maxAttempts {
			stuck = append(stuck, req)
		}
		if len(stuck) == limit {
			break
		}
	}
	return stuck, nil
}

func (m *MockRequestRepository) MarkAttempt(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkAttemptFn != nil {
		return m.MarkAttemptFn(ctx, id, nextRetryAt)
	}
	req, ok := m.requests[id]
	if !ok {
		return domain.NewRequestNotFoundError(id.String())
	}
	req.AttemptCount++
	req.NextRetryAt = &nextRetryAt
	return nil
}

func (m *MockRequestRepository) ExpireEmailSent(ctx context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExpireEmailSentFn != nil {
		return m.ExpireEmailSentFn(ctx, olderThan)
	}
	var expired int64
	cutoff := time.Now().Add(-olderThan)
	for _, req := range m.requests {
		if req.Status == domain.StatusEmailSent && req.UpdatedAt.Before(cutoff) {
			req.Status = domain.StatusFailed
			expired++
		}
	}
	return expired, nil
}

// MockReplyLedger
type MockReplyLedger struct {
	mu       sync.Mutex
	consumed map[string]bool
	expected map[string]*uuid.UUID

	IsValidReplyFn        func(ctx context.Context, messageID string) (bool, error)
	ConsumeReplyFn        func(ctx context.Context, messageID string) error
	InsertExpectedReplyFn func(ctx context.Context, messageID string, requestID *uuid.UUID) error
	FindRequestByReplyFn  func(ctx context.Context, messageID string) (*domain.Request, error)

	// Requests resolves FindRequestByReply when no override is set.
	Requests *MockRequestRepository
}

func NewMockReplyLedger() *MockReplyLedger {
	return &MockReplyLedger{
		consumed: make(map[string]bool),
		expected: make(map[string]*uuid.UUID),
	}
}

func (m *MockReplyLedger) IsValidReply(ctx context.Context, messageID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsValidReplyFn != nil {
		return m.IsValidReplyFn(ctx, messageID)
	}
	return !m.consumed[messageID], nil
}

func (m *MockReplyLedger) ConsumeReply(ctx context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConsumeReplyFn != nil {
		return m.ConsumeReplyFn(ctx, messageID)
	}
	if m.consumed[messageID] {
		return domain.NewDuplicateReplyError(messageID)
	}
	m.consumed[messageID] = true
	return nil
}

func (m *MockReplyLedger) InsertExpectedReply(ctx context.Context, messageID string, requestID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertExpectedReplyFn != nil {
		return m.InsertExpectedReplyFn(ctx, messageID, requestID)
	}
	if _, ok := m.expected[messageID]; ok {
		return domain.NewExpectationConflictError(messageID)
	}
	m.expected[messageID] = requestID
	return nil
}

func (m *MockReplyLedger) FindRequestByReply(ctx context.Context, messageID string) (*domain.Request, error) {
	m.mu.Lock()
	requestID, ok := m.expected[messageID]
	m.mu.Unlock()
	if m.FindRequestByReplyFn != nil {
		return m.FindRequestByReplyFn(ctx, messageID)
	}
	if !ok || requestID == nil || m.Requests == nil {
		return nil, domain.NewRequestNotFoundError(messageID)
	}
	return m.Requests.FindByID(ctx, *requestID)
}

// MockMailSender records every message it accepts.
type MockMailSender struct {
	mu   sync.Mutex
	sent []application.EmailMessage

	SendFn func(ctx context.Context, msg application.EmailMessage) (*application.SendReceipt, error)
}

func NewMockMailSender() *MockMailSender {
	return &MockMailSender{}
}

func (m *MockMailSender) Send(ctx context.Context, msg application.EmailMessage) (*application.SendReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	m.sent = append(m.sent, msg)
	return &application.SendReceipt{
		Status:    "sent",
		MessageID: fmt.Sprintf("<msg-%d@relayer.test>", len(m.sent)),
	}, nil
}

func (m *MockMailSender) Sent() []application.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]application.EmailMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// MockRenderer
type MockRenderer struct {
	RenderFn func(name string, data map[string]any) (string, error)
}

func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

func (m *MockRenderer) Render(name string, data map[string]any) (string, error) {
	if m.RenderFn != nil {
		return m.RenderFn(name, data)
	}
	return "<html>" + name + "</html>", nil
}

// MockProofGenerator
type MockProofGenerator struct {
	GenerateProofFn func(ctx context.Context, rawEmail string, req *domain.Request) (*domain.EmailProof, error)
}

func NewMockProofGenerator() *MockProofGenerator {
	return &MockProofGenerator{}
}

func (m *MockProofGenerator) GenerateProof(ctx context.Context, rawEmail string, req *domain.Request) (*domain.EmailProof, error) {
	if m.GenerateProofFn != nil {
		return m.GenerateProofFn(ctx, rawEmail, req)
	}
	return &domain.EmailProof{
		DomainName:    "relayer.test",
		PublicKeyHash: "0xabc",
		Timestamp:     time.Now().Unix(),
	}, nil
}

// MockChainClient
type MockChainClient struct {
	mu        sync.Mutex
	submitted []domain.EmailAuthMsg

	SubmitAuthMessageFn    func(ctx context.Context, req *domain.Request, msg domain.EmailAuthMsg) error
	IsDKIMHashRegisteredFn func(ctx context.Context, contractAddress, domainName, publicKeyHash string) (bool, error)
	RegisterDKIMHashFn     func(ctx context.Context, contractAddress, domainName, publicKeyHash string) error
}

func NewMockChainClient() *MockChainClient {
	return &MockChainClient{}
}

func (m *MockChainClient) SubmitAuthMessage(ctx context.Context, req *domain.Request, msg domain.EmailAuthMsg) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubmitAuthMessageFn != nil {
		return m.SubmitAuthMessageFn(ctx, req, msg)
	}
	m.submitted = append(m.submitted, msg)
	return nil
}

func (m *MockChainClient) Submitted() []domain.EmailAuthMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EmailAuthMsg, len(m.submitted))
	copy(out, m.submitted)
	return out
}

func (m *MockChainClient) IsDKIMHashRegistered(ctx context.Context, contractAddress, domainName, publicKeyHash string) (bool, error) {
	if m.IsDKIMHashRegisteredFn != nil {
		return m.IsDKIMHashRegisteredFn(ctx, contractAddress, domainName, publicKeyHash)
	}
	return true, nil
}

func (m *MockChainClient) RegisterDKIMHash(ctx context.Context, contractAddress, domainName, publicKeyHash string) error {
	if m.RegisterDKIMHashFn != nil {
		return m.RegisterDKIMHashFn(ctx, contractAddress, domainName, publicKeyHash)
	}
	return nil
}

// MockChainRegistry
type MockChainRegistry struct {
	ClientFn func(chain string) (application.ChainClient, error)

	Clients map[string]application.ChainClient
}

func NewMockChainRegistry(clients map[string]application.ChainClient) *MockChainRegistry {
	return &MockChainRegistry{Clients: clients}
}

func (m *MockChainRegistry) Client(chain string) (application.ChainClient, error) {
	if m.ClientFn != nil {
		return m.ClientFn(chain)
	}
	if client, ok := m.Clients[chain]; ok {
		return client, nil
	}
	return nil, domain.NewUnknownChainError(chain)
}

// MockDKIMVerifier
type MockDKIMVerifier struct {
	VerifyAndRegisterFn func(ctx context.Context, email *domain.ParsedEmail, contractAddress string, client application.ChainClient) error
}

func NewMockDKIMVerifier() *MockDKIMVerifier {
	return &MockDKIMVerifier{}
}

func (m *MockDKIMVerifier) VerifyAndRegister(ctx context.Context, email *domain.ParsedEmail, contractAddress string, client application.ChainClient) error {
	if m.VerifyAndRegisterFn != nil {
		return m.VerifyAndRegisterFn(ctx, email, contractAddress, client)
	}
	return nil
}

// MockEmailParser
type MockEmailParser struct {
	ParseFn func(raw string) (*domain.ParsedEmail, error)
}

func NewMockEmailParser() *MockEmailParser {
	return &MockEmailParser{}
}

func (m *MockEmailParser) Parse(raw string) (*domain.ParsedEmail, error) {
	if m.ParseFn != nil {
		return m.ParseFn(raw)
	}
	return &domain.ParsedEmail{Raw: raw}, nil
}
