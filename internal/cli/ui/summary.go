package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/surfacegen/genapi/internal/codegen"
	"github.com/surfacegen/genapi/internal/errors"
)

// SummaryOptions describes one finished emission
type SummaryOptions struct {
	Summary     codegen.Summary
	Output      string
	Elapsed     time.Duration
	Diagnostics errors.DiagnosticList
	// History describes the change against the previous recorded emission
	History string
	NoColor bool
}

// FormatSummary renders the counts of an emission followed by any warnings
//
// Example output:
//
//	✓ Emitted Contoso.Widgets
//	Output:     widgets.cs
//	Namespaces: 2
//	Types:      5
//	Members:    12
//	Warnings:   0
func FormatSummary(opts SummaryOptions) string {
	var b strings.Builder
	s := opts.Summary

	b.WriteString(FormatSuccess("Emitted "+s.Assembly, opts.NoColor))
	b.WriteString("\n")

	table := NewKeyValueTable(&b, opts.NoColor)
	output := opts.Output
	if output == "" {
		output = "stdout"
	}
	table.AddRow("Output", output)
	table.AddRow("Namespaces", fmt.Sprint(s.Namespaces))
	table.AddRow("Types", fmt.Sprint(s.Types))
	table.AddRow("Members", fmt.Sprint(s.Members))
	_, warnings, _ := opts.Diagnostics.Counts()
	table.AddRow("Warnings", fmt.Sprint(warnings))
	if opts.History != "" {
		table.AddRow("History", opts.History)
	}
	if opts.Elapsed > 0 {
		table.AddRow("Time", opts.Elapsed.Round(time.Millisecond).String())
	}
	table.Render()

	for _, d := range opts.Diagnostics {
		if d.Severity == errors.SeverityWarning {
			b.WriteString("\n")
			b.WriteString(DiagnosticError(d, opts.NoColor))
		}
	}
	return b.String()
}
