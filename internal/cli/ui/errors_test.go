package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/surfacegen/genapi/internal/errors"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "context and problem",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "type not found",
				Problem: "No type named 'Widgt'.",
			},
			contains: []string{"❌ TYPE NOT FOUND\n", "   No type named 'Widgt'.\n"},
		},
		{
			name: "suggestions",
			opts: ErrorOptions{
				Problem:     "No type named 'Widgt'.",
				Suggestions: []string{"Contoso.Widget", "Contoso.Widgets"},
			},
			contains: []string{"Did you mean: Contoso.Widget, Contoso.Widgets?"},
		},
		{
			name: "help commands",
			opts: ErrorOptions{
				Problem:      "Emission failed",
				HelpCommands: []string{"Get help: genapi emit --help"},
			},
			contains: []string{"   → Get help: genapi emit --help\n"},
		},
		{
			name:     "warning",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "Dynamic marker ignored"},
			contains: []string{"⚠️ Dynamic marker ignored\n"},
		},
		{
			name:     "info",
			opts:     ErrorOptions{Level: ErrorLevelInfo, Problem: "Watching lib.yaml"},
			contains: []string{"ℹ️ Watching lib.yaml\n"},
		},
		{
			name: "consequence",
			opts: ErrorOptions{
				Context:     "write failed",
				Problem:     "disk full",
				Consequence: "The output file is incomplete",
			},
			contains: []string{"disk full", "\n   The output file is incomplete\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			result := FormatError(tt.opts)
			for _, expected := range tt.contains {
				assert.Contains(t, result, expected)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, ErrorOptions{Problem: "boom", NoColor: true})
	assert.Equal(t, "❌ boom\n", buf.String())
}

func TestFormatSuccess(t *testing.T) {
	assert.Equal(t, "✓ done", FormatSuccess("done", true))

	var buf bytes.Buffer
	WriteSuccess(&buf, "done", true)
	assert.Equal(t, "✓ done\n", buf.String())
}

func TestDiagnosticError(t *testing.T) {
	d := errors.NewMalformedDynamic("Contoso.Widget.Bag", "expected 4 flags, got 2")
	result := DiagnosticError(d, true)

	assert.Contains(t, result, "⚠️ MALFORMED DYNAMIC [GEN612]\n")
	assert.Contains(t, result, "Ignoring dynamic marker: expected 4 flags, got 2 (in Contoso.Widget.Bag)")
	assert.Contains(t, result, "→ The literal type was written instead of dynamic")

	load := errors.NewReadDocument("lib.yaml", assert.AnError)
	result = DiagnosticError(load, true)
	assert.Contains(t, result, "❌ READ DOCUMENT [LOAD100]\n")
	assert.Contains(t, result, "File: lib.yaml")
}

func TestTypeNotFoundError(t *testing.T) {
	result := TypeNotFoundError("Widgt", []string{"Contoso.Widget"}, true)

	assert.Contains(t, result, "TYPE NOT FOUND")
	assert.Contains(t, result, "No type named 'Widgt' in the metadata document.")
	assert.Contains(t, result, "Did you mean: Contoso.Widget?")
	assert.Contains(t, result, "genapi emit --help")
}

func TestConfigError(t *testing.T) {
	result := ConfigError("format.indent must contain only spaces or tabs", nil, true)

	assert.Contains(t, result, "CONFIGURATION ERROR")
	assert.Contains(t, result, "Create a config: genapi init")
	assert.NotContains(t, result, "Did you mean")
}

func TestWarning(t *testing.T) {
	assert.Equal(t, "⚠️ careful\n", Warning("careful", true))
}
