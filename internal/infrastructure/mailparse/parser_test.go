package mailparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailauth/relayer/internal/infrastructure/mailparse"
)

const sampleReply = "From: Alice <alice@example.com>\r\n" +
	"To: relayer@relayer.test\r\n" +
	"Subject: Re: Auth request\r\n" +
	"Message-Id: <reply-1@example.com>\r\n" +
	"In-Reply-To: <msg-1@relayer.test>\r\n" +
	"\r\n" +
	"Confirmed.\r\n"

const sampleCommand = "From: bob@example.com\r\n" +
	"To: relayer@relayer.test\r\n" +
	"Subject: Send 1 TOKEN to 0xABC\r\n" +
	"Message-Id: <cmd-1@example.com>\r\n" +
	"\r\n" +
	"Body text.\r\n"

func TestParser_Parse(t *testing.T) {
	parser := mailparse.NewParser()

	t.Run("parses a reply email", func(t *testing.T) {
		email, err := parser.Parse(sampleReply)

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", email.From)
		assert.Equal(t, "Re: Auth request", email.Subject)
		assert.Equal(t, "reply-1@example.com", email.MessageID)
		assert.Equal(t, "msg-1@relayer.test", email.InReplyTo)
		assert.Contains(t, email.Body, "Confirmed.")
		assert.Equal(t, sampleReply, email.Raw)
		assert.True(t, email.IsReply())
	})

	t.Run("email without In-Reply-To is not a reply", func(t *testing.T) {
		email, err := parser.Parse(sampleCommand)

		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", email.From)
		assert.Empty(t, email.InReplyTo)
		assert.False(t, email.IsReply())
	})

	t.Run("rejects body without headers", func(t *testing.T) {
		_, err := parser.Parse("just some text, no headers")

		assert.Error(t, err)
	})

	t.Run("rejects missing From header", func(t *testing.T) {
		raw := "Subject: hello\r\n\r\nbody\r\n"

		_, err := parser.Parse(raw)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "From header")
	})
}
