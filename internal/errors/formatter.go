package errors

import (
	"fmt"
	"strings"
)

// FormatDiagnostic returns a human-readable message for terminal output
func FormatDiagnostic(d *Diagnostic) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s [%s]\n", severityIcon(d.Severity), categoryDisplayName(d.Category), d.Code)

	if d.File != "" {
		fmt.Fprintf(&b, "File: %s\n", d.File)
	}
	if d.Definition != "" {
		fmt.Fprintf(&b, "Definition: %s\n", d.Definition)
	}
	fmt.Fprintf(&b, "  %s\n", d.Message)

	if d.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", d.Suggestion)
	}

	return b.String()
}

// FormatDiagnosticList returns a formatted string of all diagnostics
func FormatDiagnosticList(list DiagnosticList) string {
	if len(list) == 0 {
		return "no errors"
	}

	var b strings.Builder

	errCount, warnCount, infoCount := list.Counts()
	fmt.Fprintf(&b, "%d error(s), %d warning(s), %d info\n\n", errCount, warnCount, infoCount)

	for i, d := range list {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(d.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line format
func FormatCompact(d *Diagnostic) string {
	where := d.File
	if d.Definition != "" {
		if where != "" {
			where += ": "
		}
		where += d.Definition
	}
	if where == "" {
		return fmt.Sprintf("%s: %s [%s]", d.Severity, d.Message, d.Code)
	}
	return fmt.Sprintf("%s: %s: %s [%s]", where, d.Severity, d.Message, d.Code)
}

func severityIcon(severity Severity) string {
	switch severity {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	case SeverityInfo:
		return "ℹ️ "
	default:
		return "❓"
	}
}

func categoryDisplayName(category Category) string {
	switch category {
	case CategoryLoad:
		return "Metadata Error"
	case CategoryCodeGen:
		return "Code Generation"
	case CategoryConfig:
		return "Configuration Error"
	default:
		return "Error"
	}
}
