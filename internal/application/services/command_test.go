package services_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailauth/relayer/internal/application/services"
)

func TestEncodeCommandParams(t *testing.T) {
	t.Run("encodes short param into two words", func(t *testing.T) {
		encoded, err := services.EncodeCommandParams([]string{"0xABC"})

		require.NoError(t, err)
		require.Len(t, encoded, 1)
		require.Len(t, encoded[0], 64)

		// Big-endian length word.
		assert.True(t, bytes.Equal(encoded[0][:31], make([]byte, 31)))
		assert.Equal(t, byte(5), encoded[0][31])

		// Content right-padded with zeros.
		assert.Equal(t, []byte("0xABC"), encoded[0][32:37])
		assert.True(t, bytes.Equal(encoded[0][37:], make([]byte, 27)))
	})

	t.Run("pads content to word boundary", func(t *testing.T) {
		long := strings.Repeat("a", 33)

		encoded, err := services.EncodeCommandParams([]string{long})

		require.NoError(t, err)
		require.Len(t, encoded[0], 32+64)
		assert.Equal(t, byte(33), encoded[0][31])
		assert.Equal(t, []byte(long), encoded[0][32:65])
	})

	t.Run("exact word length content gets no extra padding", func(t *testing.T) {
		exact := strings.Repeat("b", 32)

		encoded, err := services.EncodeCommandParams([]string{exact})

		require.NoError(t, err)
		assert.Len(t, encoded[0], 64)
	})

	t.Run("preserves parameter order", func(t *testing.T) {
		encoded, err := services.EncodeCommandParams([]string{"first", "second", "third"})

		require.NoError(t, err)
		require.Len(t, encoded, 3)
		assert.Equal(t, []byte("first"), encoded[0][32:37])
		assert.Equal(t, []byte("second"), encoded[1][32:38])
		assert.Equal(t, []byte("third"), encoded[2][32:37])
	})

	t.Run("empty list encodes to empty list", func(t *testing.T) {
		encoded, err := services.EncodeCommandParams(nil)

		require.NoError(t, err)
		assert.Empty(t, encoded)
	})

	t.Run("rejects empty parameter", func(t *testing.T) {
		_, err := services.EncodeCommandParams([]string{"ok", ""})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parameter 1")
	})
}
