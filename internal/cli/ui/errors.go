package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/surfacegen/genapi/internal/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func levelStyle(level ErrorLevel) (header, body *color.Color, symbol string) {
	switch level {
	case ErrorLevelWarning:
		return color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		return color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		return color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ TYPE NOT FOUND
//	   No type named 'Contoso.Widgets.Widgt' in the metadata document.
//
//	   Did you mean: Contoso.Widgets.Widget?
//
//	   → Get help: genapi emit --help
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	headerColor, bodyColor, symbol := levelStyle(opts.Level)
	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		if opts.Problem != "" {
			bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
		}
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// DiagnosticError renders a coded diagnostic. Warnings and info diagnostics
// use the matching level.
func DiagnosticError(d *errors.Diagnostic, noColor bool) string {
	level := ErrorLevelError
	switch d.Severity {
	case errors.SeverityWarning:
		level = ErrorLevelWarning
	case errors.SeverityInfo:
		level = ErrorLevelInfo
	}

	context := fmt.Sprintf("%s [%s]", strings.ReplaceAll(d.Type, "_", " "), d.Code)
	problem := d.Message
	if d.Definition != "" {
		problem += fmt.Sprintf(" (in %s)", d.Definition)
	}

	opts := ErrorOptions{
		Level:   level,
		Context: context,
		Problem: problem,
		NoColor: noColor,
	}
	if d.File != "" {
		opts.Consequence = "File: " + d.File
	}
	if d.Suggestion != "" {
		opts.HelpCommands = append(opts.HelpCommands, d.Suggestion)
	}
	return FormatError(opts)
}

// TypeNotFoundError reports a --type selection that matched nothing
func TypeNotFoundError(name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "TYPE NOT FOUND",
		Problem:     fmt.Sprintf("No type named '%s' in the metadata document.", name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"Emit the whole surface: genapi emit --input <document>",
			"Get help: genapi emit --help",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"Create a config: genapi init",
			"Get help: genapi --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}
