// Package mailparse is the inbound-mail parser boundary: it reduces a
// raw RFC 5322 message to the handful of fields the orchestrator
// consumes.
package mailparse

import (
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/emailauth/relayer/internal/domain"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(raw string) (*domain.ParsedEmail, error) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}

	from, err := mail.ParseAddress(msg.Header.Get("From"))
	if err != nil {
		return nil, fmt.Errorf("parse From header: %w", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &domain.ParsedEmail{
		From:      from.Address,
		Subject:   msg.Header.Get("Subject"),
		MessageID: trimMessageID(msg.Header.Get("Message-Id")),
		InReplyTo: trimMessageID(msg.Header.Get("In-Reply-To")),
		Body:      string(body),
		Raw:       raw,
	}, nil
}

// trimMessageID strips the angle brackets mail agents wrap identifiers
// in, so ledger keys match the mail channel's bare message ids.
func trimMessageID(id string) string {
	return strings.Trim(strings.TrimSpace(id), "<>")
}
