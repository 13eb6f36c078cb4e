// Package errors provides structured diagnostics for genapi.
// It defines diagnostic codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"
	"fmt"
)

// Code represents a unique diagnostic code
type Code string

// Category represents the category of a diagnostic
type Category string

const (
	// CategoryLoad represents metadata document errors (LOAD100-199)
	CategoryLoad Category = "load"
	// CategoryCodeGen represents declaration writer diagnostics (GEN600-699)
	CategoryCodeGen Category = "codegen"
	// CategoryConfig represents configuration errors (CFG700-799)
	CategoryConfig Category = "config"
)

// Severity indicates the severity level of a diagnostic
type Severity string

const (
	// SeverityError indicates a failure that stops emission
	SeverityError Severity = "error"
	// SeverityWarning indicates a degraded but completed emission
	SeverityWarning Severity = "warning"
	// SeverityInfo indicates informational messages
	SeverityInfo Severity = "info"
)

// Diagnostic is a structured error or warning
type Diagnostic struct {
	// Code is the unique diagnostic code (e.g., "GEN612", "LOAD101")
	Code Code `json:"code"`
	// Type is a machine-readable identifier
	Type string `json:"type"`
	// Category is the diagnostic category
	Category Category `json:"category"`
	// Severity is the severity level
	Severity Severity `json:"severity"`
	// Message is the primary message
	Message string `json:"message"`
	// Definition names the metadata node involved (optional)
	Definition string `json:"definition,omitempty"`
	// File is the metadata document or config file (optional)
	File string `json:"file,omitempty"`
	// Suggestion provides a hint for fixing the problem (optional)
	Suggestion string `json:"suggestion,omitempty"`
	// Cause is the underlying error (optional)
	Cause error `json:"-"`
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	return FormatCompact(d)
}

// Unwrap returns the underlying cause
func (d *Diagnostic) Unwrap() error {
	return d.Cause
}

// Format returns a human-readable message for terminal output
func (d *Diagnostic) Format() string {
	return FormatDiagnostic(d)
}

// ToJSON returns the diagnostic as a JSON string
func (d *Diagnostic) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithFile sets the file name for the diagnostic
func (d *Diagnostic) WithFile(file string) *Diagnostic {
	d.File = file
	return d
}

// WithDefinition sets the metadata node the diagnostic is about
func (d *Diagnostic) WithDefinition(name string) *Diagnostic {
	d.Definition = name
	return d
}

// WithSuggestion sets a suggestion for fixing the problem
func (d *Diagnostic) WithSuggestion(suggestion string) *Diagnostic {
	d.Suggestion = suggestion
	return d
}

// WithCause records the underlying error
func (d *Diagnostic) WithCause(err error) *Diagnostic {
	d.Cause = err
	return d
}

// DiagnosticList is a collection of diagnostics
type DiagnosticList []*Diagnostic

// Error implements the error interface
func (dl DiagnosticList) Error() string {
	if len(dl) == 0 {
		return "no errors"
	}
	return FormatDiagnosticList(dl)
}

// HasErrors returns true if the list contains any errors (excludes warnings/info)
func (dl DiagnosticList) HasErrors() bool {
	for _, d := range dl {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if the list contains any warnings
func (dl DiagnosticList) HasWarnings() bool {
	for _, d := range dl {
		if d.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// ToJSON returns all diagnostics as a JSON array
func (dl DiagnosticList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(dl, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Counts returns the number of diagnostics by severity
func (dl DiagnosticList) Counts() (errors, warnings, info int) {
	for _, d := range dl {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// Err returns the list as an error when it contains errors, nil otherwise
func (dl DiagnosticList) Err() error {
	if dl.HasErrors() {
		return dl
	}
	return nil
}

func newDiagnostic(code Code, typ string, category Category, severity Severity, message string) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

func newDiagnosticf(code Code, typ string, category Category, severity Severity, format string, args ...any) *Diagnostic {
	return newDiagnostic(code, typ, category, severity, fmt.Sprintf(format, args...))
}
