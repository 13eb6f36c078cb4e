package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/surfacegen/genapi/internal/codegen"
	"github.com/surfacegen/genapi/internal/errors"
)

func TestFormatSummary(t *testing.T) {
	result := FormatSummary(SummaryOptions{
		Summary: codegen.Summary{Assembly: "Contoso.Widgets", Namespaces: 2, Types: 5, Members: 12},
		Output:  "widgets.cs",
		NoColor: true,
	})

	expected := `✓ Emitted Contoso.Widgets
Output:     widgets.cs
Namespaces: 2
Types:      5
Members:    12
Warnings:   0
`
	assert.Equal(t, expected, result)
}

func TestFormatSummary_Warnings(t *testing.T) {
	result := FormatSummary(SummaryOptions{
		Summary: codegen.Summary{Assembly: "Contoso.Widgets"},
		Elapsed: 1500 * time.Microsecond,
		Diagnostics: errors.DiagnosticList{
			errors.NewMalformedDynamic("Contoso.Widget.Bag", "too few flags"),
			errors.NewUnknownDefinition("*metadata.Opaque"),
		},
		NoColor: true,
	})

	assert.Contains(t, result, "Output:     stdout\n")
	assert.Contains(t, result, "Warnings:   2\n")
	assert.Contains(t, result, "Time:       2ms\n")
	assert.Contains(t, result, "MALFORMED DYNAMIC [GEN612]")
	assert.Contains(t, result, "UNKNOWN DEFINITION [GEN611]")
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("a", "1")
	table.AddRow("long", "2")
	table.Render()

	assert.Equal(t, "a:    1\nlong: 2\n", buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Watching", true)
	assert.Equal(t, "Watching\n────────\n", buf.String())
}

func TestFormatSummary_History(t *testing.T) {
	result := FormatSummary(SummaryOptions{
		Summary: codegen.Summary{Assembly: "Contoso.Widgets", Types: 1},
		History: "changed",
		NoColor: true,
	})

	assert.Contains(t, result, "Warnings:   0\nHistory:    changed\n")
}
