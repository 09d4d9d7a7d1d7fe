package domain

// ParsedEmail is the external mail parser's output. The orchestrator
// consumes only these derived fields, never the raw MIME structure.
type ParsedEmail struct {
	From      string
	Subject   string
	MessageID string
	InReplyTo string
	Body      string
	Raw       string
}

// IsReply reports whether the email references an earlier message.
// An email without an In-Reply-To header is not a reply to anything
// tracked and is routed to command handling instead of the reply
// pipeline.
func (e *ParsedEmail) IsReply() bool {
	return e.InReplyTo != ""
}

// EmailProof is the succinct authenticity proof produced by the proving
// service for a verified email.
type EmailProof struct {
	DomainName     string `json:"domain_name"`
	PublicKeyHash  string `json:"public_key_hash"`
	Timestamp      int64  `json:"timestamp"`
	MaskedCommand  string `json:"masked_command"`
	EmailNullifier string `json:"email_nullifier"`
	AccountSalt    string `json:"account_salt"`
	IsCodeExist    bool   `json:"is_code_exist"`
	Proof          []byte `json:"proof"`
}

// EmailAuthMsg is the bundle submitted on-chain to authorize an action
// on behalf of the email's sender.
type EmailAuthMsg struct {
	TemplateID           uint64       `json:"template_id"`
	CommandParams        [][]byte     `json:"command_params"`
	SkippedCommandPrefix uint64       `json:"skipped_command_prefix"`
	Proof                EmailProof   `json:"proof"`
}
