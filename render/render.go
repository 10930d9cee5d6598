// Package render is the template stage of the pipeline. It consumes the
// field mapping of a decomposed document as its rendering context and
// returns either the rendered text or a diagnostic of the same shape the
// decomposition stage uses, so callers can merge errors from parsing and
// templating into one reporting surface.
package render

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/docmatter/matter/diag"
	"github.com/docmatter/matter/matter"
	"go.uber.org/zap"
)

// Diagnostic codes emitted by the template stage.
const (
	CodeNotFound = "template.not_found"
	CodeInvalid  = "template.invalid"
	CodeExec     = "template.exec"
)

// DefaultTemplate is used when the document carries no template directive
// and the caller requests none.
const DefaultTemplate = "default"

// Renderer loads templates by name from a directory. Template files carry
// the .tmpl extension.
type Renderer struct {
	dir string
	log *zap.SugaredLogger
}

func New(dir string, logger *zap.SugaredLogger) *Renderer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Renderer{dir: dir, log: logger}
}

// Render executes the named template over the document fields. An empty
// name falls back to the document's template directive, then to
// DefaultTemplate.
func (r *Renderer) Render(doc *matter.Document, name string) (string, *diag.Diagnostic) {
	if name == "" {
		name = doc.Template()
	}
	if name == "" {
		name = DefaultTemplate
	}

	path := filepath.Join(r.dir, name+".tmpl")
	text, err := os.ReadFile(path)
	if err != nil {
		return "", diag.Errorf(CodeNotFound, "template %q not found", name).
			WithCause(err).
			WithHint("expected " + path)
	}

	r.log.Debugw("rendering document", "template", name, "path", path)
	return Execute(name, string(text), doc)
}

// Execute runs one template source over the document fields. It exists
// separately from Renderer so callers with in-memory templates get the same
// diagnostics without touching the filesystem.
func Execute(name string, text string, doc *matter.Document) (string, *diag.Diagnostic) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", diag.Errorf(CodeInvalid, "template %q does not parse", name).
			At(templateErrLocation(name, err)).
			WithCause(err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, doc.Context()); err != nil {
		return "", diag.Errorf(CodeExec, "template %q failed to execute", name).
			At(templateErrLocation(name, err)).
			WithCause(err)
	}
	return sb.String(), nil
}

// tmplLineRE matches the "template: name:LINE:" or "template: name:LINE"
// prefix of text/template errors.
var tmplLineRE = regexp.MustCompile(`template: [^:]*:(\d+)`)

// templateErrLocation recovers a line number from a text/template error so
// template failures are located like parse failures are.
func templateErrLocation(name string, err error) diag.Location {
	loc := diag.Location{File: name + ".tmpl", Line: 1, Column: 1}
	if m := tmplLineRE.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil && n >= 1 {
			loc.Line = n
		}
	}
	return loc
}
