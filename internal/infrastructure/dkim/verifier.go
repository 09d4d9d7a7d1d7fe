// Package dkim resolves an inbound email's domain-key record and keeps
// the chain-side registry in sync with it. The signature cryptography
// itself is enforced by the registry contract; this collaborator's job
// is locating the key and registering its hash.
package dkim

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"strings"

	"github.com/emailauth/relayer/internal/application"
	"github.com/emailauth/relayer/internal/domain"
)

type Verifier struct {
	resolver *net.Resolver
	logger   *slog.Logger
}

func NewVerifier(logger *slog.Logger) *Verifier {
	return &Verifier{
		resolver: net.DefaultResolver,
		logger:   logger,
	}
}

func (v *Verifier) VerifyAndRegister(ctx context.Context, email *domain.ParsedEmail, contractAddress string, client application.ChainClient) error {
	sigDomain, selector, err := signatureTags(email.Raw)
	if err != nil {
		return err
	}

	senderDomain := addressDomain(email.From)
	if !strings.EqualFold(sigDomain, senderDomain) {
		return fmt.Errorf("signature domain %s does not match sender domain %s", sigDomain, senderDomain)
	}

	hash, err := v.publicKeyHash(ctx, selector, sigDomain)
	if err != nil {
		return err
	}

	registered, err := client.IsDKIMHashRegistered(ctx, contractAddress, sigDomain, hash)
	if err != nil {
		return fmt.Errorf("dkim registry lookup: %w", err)
	}
	if registered {
		return nil
	}

	v.logger.Info("registering domain key",
		"domain", sigDomain,
		"selector", selector,
		"contract", contractAddress,
	)
	if err := client.RegisterDKIMHash(ctx, contractAddress, sigDomain, hash); err != nil {
		return fmt.Errorf("dkim registry update: %w", err)
	}

	return nil
}

// signatureTags extracts the d= and s= tags from the email's
// DKIM-Signature header.
func signatureTags(raw string) (domainTag, selectorTag string, err error) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return "", "", fmt.Errorf("read message headers: %w", err)
	}

	sig := msg.Header.Get("Dkim-Signature")
	if sig == "" {
		return "", "", fmt.Errorf("missing DKIM-Signature header")
	}

	for _, tag := range strings.Split(sig, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(tag), "=")
		if !found {
			continue
		}
		switch key {
		case "d":
			domainTag = strings.TrimSpace(value)
		case "s":
			selectorTag = strings.TrimSpace(value)
		}
	}

	if domainTag == "" || selectorTag == "" {
		return "", "", fmt.Errorf("DKIM-Signature header missing d= or s= tag")
	}
	return domainTag, selectorTag, nil
}

// publicKeyHash looks up the selector's TXT record and hashes the
// published public key.
func (v *Verifier) publicKeyHash(ctx context.Context, selector, domainName string) (string, error) {
	name := fmt.Sprintf("%s._domainkey.%s", selector, domainName)
	records, err := v.resolver.LookupTXT(ctx, name)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", name, err)
	}

	record := strings.Join(records, "")
	var publicKey string
	for _, tag := range strings.Split(record, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(tag), "=")
		if found && key == "p" {
			publicKey = strings.TrimSpace(value)
			break
		}
	}
	if publicKey == "" {
		return "", fmt.Errorf("no public key published at %s", name)
	}

	keyBytes, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return "", fmt.Errorf("decode public key at %s: %w", name, err)
	}

	sum := sha256.Sum256(keyBytes)
	return hex.EncodeToString(sum[:]), nil
}

func addressDomain(address string) string {
	_, after, found := strings.Cut(address, "@")
	if !found {
		return address
	}
	return after
}
