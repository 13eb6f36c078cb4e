package commands

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surfacegen/genapi/internal/cli/config"
	"github.com/surfacegen/genapi/internal/errors"
	"github.com/surfacegen/genapi/internal/filter"
	"github.com/surfacegen/genapi/internal/history"
	"github.com/surfacegen/genapi/internal/metadata"
	"github.com/surfacegen/genapi/internal/watch"
)

const widgetsDoc = `
assembly: Contoso.Widgets
version: 1.2.0.0
namespaces:
  - name: Contoso.Widgets
    types:
      - name: Widget
        fields:
          - name: Count
            type: int
      - name: Plumbing
        visibility: assembly
`

const gizmoDoc = widgetsDoc + `      - name: Gizmo
`

func writeDoc(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "Contoso.Widgets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "genapi", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "emit", "watch", "init", "history"} {
		assert.Contains(t, names, expected)
	}

	for _, flag := range []string{"config", "verbose", "json-log", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() {
		color.NoColor = noColor
		Version, GitCommit = "dev", "unknown"
	}()

	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "genapi version: 1.0.0-test")
	assert.Contains(t, stdout, "Git commit: abc123")
	assert.Contains(t, stdout, "Go version: go")
}

func TestEmitCommand_Stdout(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), widgetsDoc)

	stdout, stderr, err := runCLI(t, "emit", doc, "--display", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, stdout, "//     API surface of Contoso.Widgets, Version=1.2.0.0")
	assert.Contains(t, stdout, "namespace Contoso.Widgets\n{\n    public partial class Widget\n")
	assert.Contains(t, stdout, "public int Count;")
	assert.NotContains(t, stdout, "Plumbing")

	assert.Contains(t, stderr, "✓ Emitted Contoso.Widgets")
	assert.Contains(t, stderr, "Output:     stdout\n")
	assert.Contains(t, stderr, "Types:      1\n")
}

func TestEmitCommand_ReferenceOutputToFile(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, widgetsDoc)
	out := filepath.Join(dir, "ref.cs")

	stdout, _, err := runCLI(t, "emit", "-i", doc, "-o", out, "--quiet")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "public partial class Widget")
	assert.Contains(t, string(data), "private Widget() { }")
}

func TestEmitCommand_IncludeInternals(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), widgetsDoc)

	stdout, _, err := runCLI(t, "emit", doc, "--display", "--include-internals", "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "internal partial class Plumbing")
}

func TestEmitCommand_ExcludeList(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, widgetsDoc)
	list := filepath.Join(dir, "exclude.txt")
	require.NoError(t, os.WriteFile(list, []byte("# not shipped\nF:Contoso.Widgets.Widget.Count\n"), 0o644))

	stdout, _, err := runCLI(t, "emit", doc, "--display", "--exclude-list", list, "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "class Widget")
	assert.NotContains(t, stdout, "Count")
}

func TestEmitCommand_Type(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), widgetsDoc)

	stdout, stderr, err := runCLI(t, "emit", doc, "--display", "--type", "Contoso.Widgets.Widget", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "public partial class Widget\n{\n")
	assert.NotContains(t, stdout, "namespace")
	assert.Contains(t, stderr, "Namespaces: 0\n")
}

func TestEmitCommand_TypeNotFound(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), widgetsDoc)

	_, _, err := runCLI(t, "emit", doc, "--type", "Contoso.Widgets.Widgt")
	var notFound *typeNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Contoso.Widgets.Widgt", notFound.Name)
	assert.Contains(t, notFound.Suggestions, "Contoso.Widgets.Widget")
}

func TestEmitCommand_MissingInput(t *testing.T) {
	_, _, err := runCLI(t, "emit")

	var diag *errors.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, errors.ErrMissingInput, diag.Code)
}

func TestEmitCommand_MalformedDocument(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "assembly: [\n")

	_, _, err := runCLI(t, "emit", doc)
	var diag *errors.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, errors.ErrDecodeDocument, diag.Code)
}

func TestEmitCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, widgetsDoc)
	cfgPath := filepath.Join(dir, "genapi.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input: "+doc+"\nwriter:\n  for_compilation: false\nformat:\n  indent: \"\\t\"\n"), 0o644))

	stdout, _, err := runCLI(t, "emit", "--config", cfgPath, "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "namespace Contoso.Widgets\n{\n\tpublic partial class Widget\n")
}

func TestEmitCommand_DumpModel(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, widgetsDoc)
	dump := filepath.Join(dir, "model", "widgets.json.gz")

	_, _, err := runCLI(t, "emit", doc, "--dump-model", dump, "-q")
	require.NoError(t, err)

	decoded, err := metadata.ReadDocument(dump)
	require.NoError(t, err)
	assert.Equal(t, "Contoso.Widgets", decoded.Assembly)
	assert.Equal(t, "1.2.0.0", decoded.Version)
}

func TestEmitCommand_History(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, widgetsDoc)
	db := filepath.Join(dir, "history.db")

	_, stderr, err := runCLI(t, "emit", doc, "--history", db, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stderr, "History:    first emission\n")

	_, stderr, err = runCLI(t, "emit", doc, "--history", db, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stderr, "History:    unchanged\n")

	writeDoc(t, dir, gizmoDoc)
	_, stderr, err = runCLI(t, "emit", doc, "--history", db, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stderr, "History:    changed\n")

	stdout, _, err := runCLI(t, "history", "--history", db, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Emission history\n")
	assert.Equal(t, 3, bytes.Count([]byte(stdout), []byte("Contoso.Widgets")))
}

func TestEmitCommand_Cache(t *testing.T) {
	mr := miniredis.RunT(t)
	doc := writeDoc(t, t.TempDir(), widgetsDoc)

	first, stderr, err := runCLI(t, "emit", doc, "--display", "--cache-redis", mr.Addr(), "--no-color")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "(cached)")
	assert.Len(t, mr.Keys(), 1)

	second, stderr, err := runCLI(t, "emit", doc, "--display", "--cache-redis", mr.Addr(), "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Output:     stdout (cached)\n")
	assert.Equal(t, first, second)

	_, _, err = runCLI(t, "emit", doc, "--cache-redis", mr.Addr(), "-q")
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 2, "reference output is cached separately")
}

func TestHistoryCommand_RequiresDatabase(t *testing.T) {
	_, _, err := runCLI(t, "history")

	var diag *errors.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, errors.ErrInvalidConfig, diag.Code)
}

func TestRenderHistory(t *testing.T) {
	base := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	records := []*history.Record{
		{Assembly: "A", Version: "2.0", OutputHash: "bbbbbbbbbbbbbbbbbbbb", Types: 3, CreatedAt: base.Add(2 * time.Minute)},
		{Assembly: "B", OutputHash: "cc", CreatedAt: base.Add(time.Minute)},
		{Assembly: "A", Version: "1.0", OutputHash: "aaaaaaaaaaaaaaaaaaaa", Types: 2, CreatedAt: base},
	}

	var buf bytes.Buffer
	renderHistory(&buf, records, true)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Contains(t, string(lines[2]), "bbbbbbbbbbbb  changed")
	assert.NotContains(t, string(lines[2]), "bbbbbbbbbbbbb")
	assert.Contains(t, string(lines[3]), "cc  first emission")
	assert.Contains(t, string(lines[4]), "first emission")

	buf.Reset()
	renderHistory(&buf, nil, true)
	assert.Contains(t, buf.String(), "No emissions recorded.")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := runCLI(t, "init", "--yes", "--dir", dir, "-i", "lib.yaml", "-o", "ref.cs", "--no-color")
	require.NoError(t, err)
	path := filepath.Join(dir, "genapi.yml")
	assert.Contains(t, stdout, "✓ Created "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lib.yaml", cfg.Input)
	assert.Equal(t, "ref.cs", cfg.Output)
	assert.True(t, cfg.Writer.ForCompilation)
	assert.True(t, cfg.Filter.ExcludeAttributes)

	_, _, err = runCLI(t, "init", "--yes", "--dir", dir)
	assert.Error(t, err, "refuses to overwrite")

	_, _, err = runCLI(t, "init", "--yes", "--dir", dir, "--force")
	assert.NoError(t, err)
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "diagnostic",
			err:      errors.NewMissingInput(),
			contains: []string{"[CFG702]"},
		},
		{
			name:     "diagnostic list",
			err:      errors.DiagnosticList{errors.NewInvalidConfig("format.indent", "bad"), errors.NewInvalidConfig("log.verbosity", "bad")}.Err(),
			contains: []string{"format.indent", "log.verbosity"},
		},
		{
			name:     "type not found",
			err:      &typeNotFoundError{Name: "Widgt", Suggestions: []string{"Contoso.Widget"}},
			contains: []string{"TYPE NOT FOUND", "Did you mean: Contoso.Widget?"},
		},
		{
			name:     "plain",
			err:      stderrors.New("boom"),
			contains: []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, tt.err, true)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestBuildFilter(t *testing.T) {
	f, err := buildFilter(config.FilterConfig{ExcludeAttributes: true})
	require.NoError(t, err)
	assert.IsType(t, &filter.PublicOnlyFilter{}, f)

	f, err = buildFilter(config.FilterConfig{IncludeInternals: true, IncludeForwardedTypes: true})
	require.NoError(t, err)
	assert.IsType(t, &filter.IncludeAllFilter{}, f)

	list := filepath.Join(t.TempDir(), "exclude.txt")
	require.NoError(t, os.WriteFile(list, []byte("T:Contoso.Widget\n"), 0o644))
	f, err = buildFilter(config.FilterConfig{ExcludeList: list})
	require.NoError(t, err)
	assert.IsType(t, &filter.ExcludeListFilter{}, f)

	_, err = buildFilter(config.FilterConfig{ExcludeList: filepath.Join(t.TempDir(), "missing.txt")})
	var diag *errors.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, errors.ErrInvalidConfig, diag.Code)
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		addr     string
		expected bool
	}{
		{"localhost:4000", true},
		{"127.0.0.1:4000", true},
		{"[::1]:4000", true},
		{":4000", false},
		{"0.0.0.0:4000", false},
		{"example.com:4000", false},
		{"nonsense", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, isLoopback(tt.addr), tt.addr)
	}
}

func TestWatchSession(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, widgetsDoc)
	ctx := context.Background()

	cfg := config.Default()
	cfg.Input = doc
	cfg.Writer.ForCompilation = false

	p := NewPipeline(cfg, io.Discard)
	p.Stdout = io.Discard
	var out bytes.Buffer
	s := &watchSession{
		pipeline:    p,
		preview:     watch.NewPreviewServer(nil),
		incremental: watch.NewIncremental(),
		files:       []string{doc},
		out:         &out,
		noColor:     true,
	}

	_, err := s.incremental.Changed(s.files)
	require.NoError(t, err)
	first := s.rebuild(ctx, nil)
	require.NotNil(t, first)
	assert.Equal(t, first.RunID, s.preview.Snapshot().RunID)
	assert.Contains(t, s.preview.Snapshot().Surface, "class Widget")
	assert.Contains(t, out.String(), "✓ Emitted Contoso.Widgets")

	s.onChange(ctx, []string{doc})
	assert.Equal(t, first.RunID, s.preview.Snapshot().RunID, "unchanged content is not re-emitted")

	writeDoc(t, dir, gizmoDoc)
	s.onChange(ctx, []string{doc})
	snap := s.preview.Snapshot()
	assert.NotEqual(t, first.RunID, snap.RunID)
	assert.Contains(t, snap.Surface, "class Gizmo")

	writeDoc(t, dir, "assembly: [\n")
	s.onChange(ctx, []string{doc})
	snap = s.preview.Snapshot()
	assert.NotEmpty(t, snap.Error)
	assert.Contains(t, snap.Surface, "class Gizmo", "the last good surface stays served")
	assert.Contains(t, out.String(), "[LOAD101]")
}

func TestWatchSession_ServePreviewRequiresSecretBeyondLoopback(t *testing.T) {
	s := &watchSession{pipeline: NewPipeline(config.Default(), io.Discard)}

	_, _, err := s.servePreview("0.0.0.0:0", "")
	var diag *errors.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, errors.ErrInvalidConfig, diag.Code)

	url, shutdown, err := s.servePreview("127.0.0.1:0", "s3cret")
	require.NoError(t, err)
	defer shutdown()
	assert.Contains(t, url, "/?token=")
}
