package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emailauth/relayer/internal/application/services"
	"github.com/emailauth/relayer/internal/domain"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestTemplateRenderer_Render(t *testing.T) {
	t.Run("fills command template fields", func(t *testing.T) {
		dir := t.TempDir()
		writeTemplate(t, dir, services.TemplateCommand,
			`<p>{{.body}}</p><p>{{.command}}</p><p>{{.requestId}}</p>`)
		renderer := services.NewTemplateRenderer(dir)

		out, err := renderer.Render(services.TemplateCommand, map[string]any{
			"body":      "Please confirm your transfer",
			"command":   "Send 1 TOKEN to 0xABC Code 123",
			"requestId": "4be43935-0001-4000-8000-000000000000",
		})

		require.NoError(t, err)
		assert.Contains(t, out, "Please confirm your transfer")
		assert.Contains(t, out, "Send 1 TOKEN to 0xABC Code 123")
		assert.Contains(t, out, "4be43935-0001-4000-8000-000000000000")
	})

	t.Run("fails when template file does not exist", func(t *testing.T) {
		renderer := services.NewTemplateRenderer(t.TempDir())

		_, err := renderer.Render(services.TemplateCompletion, map[string]any{})

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTemplateNotFound))
	})

	t.Run("fails when a referenced field is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeTemplate(t, dir, services.TemplateError, `<p>{{.error}}</p><p>{{.userEmailAddr}}</p>`)
		renderer := services.NewTemplateRenderer(dir)

		_, err := renderer.Render(services.TemplateError, map[string]any{
			"error": "proof generation failed",
		})

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeRenderFailed))
	})

	t.Run("fails on malformed template", func(t *testing.T) {
		dir := t.TempDir()
		writeTemplate(t, dir, services.TemplateAcknowledgement, `{{.request`)
		renderer := services.NewTemplateRenderer(dir)

		_, err := renderer.Render(services.TemplateAcknowledgement, map[string]any{"request": "cmd"})

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeRenderFailed))
	})

	t.Run("escapes html in field values", func(t *testing.T) {
		dir := t.TempDir()
		writeTemplate(t, dir, services.TemplateError, `<p>{{.error}}</p>`)
		renderer := services.NewTemplateRenderer(dir)

		out, err := renderer.Render(services.TemplateError, map[string]any{
			"error": `<script>alert("x")</script>`,
		})

		require.NoError(t, err)
		assert.NotContains(t, out, "<script>")
	})
}
