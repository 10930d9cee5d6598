package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docmatter/matter/matter"
	"github.com/stretchr/testify/require"
)

func testDoc(t *testing.T, src string) *matter.Document {
	t.Helper()
	doc, _, d := matter.Decompose(src, matter.Options{Filename: "doc.md"})
	require.Nil(t, d)
	return doc
}

func writeTemplate(t *testing.T, dir, name, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".tmpl"), []byte(text), 0o644))
}

func TestRenderNamedTemplate(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page", "<h1>{{.title}}</h1>\n{{.body}}")

	doc := testDoc(t, "---\ntitle: Hello\n---\nthe body")
	r := New(dir, nil)

	out, d := r.Render(doc, "page")
	require.Nil(t, d)
	require.Equal(t, "<h1>Hello</h1>\nthe body", out)
}

func TestRenderUsesDocumentDirective(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "fancy", "F:{{.title}}")

	doc := testDoc(t, "---\ntemplate: fancy\ntitle: T\n---\n")
	r := New(dir, nil)

	out, d := r.Render(doc, "")
	require.Nil(t, d)
	require.Equal(t, "F:T", out)
}

func TestRenderFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, DefaultTemplate, "D:{{.body}}")

	doc := testDoc(t, "plain body")
	r := New(dir, nil)

	out, d := r.Render(doc, "")
	require.Nil(t, d)
	require.Equal(t, "D:plain body", out)
}

func TestRenderCollections(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "list", "{{range .items}}[{{.name}}]{{end}}")

	doc := testDoc(t, "---\nscope: items\nname: A\n---\n---\nscope: items\nname: B\n---\n")
	r := New(dir, nil)

	out, d := r.Render(doc, "list")
	require.Nil(t, d)
	require.Equal(t, "[A][B]", out)
}

func TestRenderTemplateNotFound(t *testing.T) {
	doc := testDoc(t, "body")
	r := New(t.TempDir(), nil)

	_, d := r.Render(doc, "missing")
	require.NotNil(t, d)
	require.Equal(t, CodeNotFound, d.Code)
	require.NotEmpty(t, d.CauseChain)
	require.Contains(t, d.Hint, "missing.tmpl")
}

func TestExecuteInvalidTemplate(t *testing.T) {
	doc := testDoc(t, "body")

	_, d := Execute("broken", "{{.title", doc)
	require.NotNil(t, d)
	require.Equal(t, CodeInvalid, d.Code)
	require.NotEmpty(t, d.CauseChain)
	require.NotNil(t, d.Primary)
	require.Equal(t, "broken.tmpl", d.Primary.File)
}

func TestExecuteExecError(t *testing.T) {
	doc := testDoc(t, "body")

	// Calling a method that does not exist fails at execution time.
	_, d := Execute("bad", `{{call .body}}`, doc)
	require.NotNil(t, d)
	require.Equal(t, CodeExec, d.Code)
	require.NotEmpty(t, d.CauseChain)
}

func TestExecuteMissingFieldIsZero(t *testing.T) {
	doc := testDoc(t, "body")

	out, d := Execute("sparse", "[{{.absent}}]", doc)
	require.Nil(t, d)
	// With missingkey=zero an absent field renders as the empty value.
	require.Equal(t, "[<no value>]", out)
}
