package services

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/emailauth/relayer/internal/domain"
)

// Template files looked up in the configured template directory.
const (
	TemplateCommand         = "command_template.html"
	TemplateAcknowledgement = "acknowledgement_template.html"
	TemplateCompletion      = "completion_template.html"
	TemplateError           = "error_template.html"
)

// TemplateRenderer loads named HTML templates from a directory and
// fills them with contextual data. A field referenced by a template but
// absent from the data fails the render; fields are never silently
// substituted with an empty string.
type TemplateRenderer struct {
	dir string
}

func NewTemplateRenderer(dir string) *TemplateRenderer {
	return &TemplateRenderer{dir: dir}
}

func (r *TemplateRenderer) Render(name string, data map[string]any) (string, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.NewTemplateNotFoundError(name)
		}
		return "", domain.NewRenderError(name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return "", domain.NewRenderError(name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", domain.NewRenderError(name, err)
	}

	return buf.String(), nil
}
