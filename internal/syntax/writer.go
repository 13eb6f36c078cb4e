// Package syntax provides the textual sinks the declaration writer emits into.
// A sink receives classified tokens (keywords, symbols, identifiers, type names,
// literals) and owns indentation and line handling.
package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Writer is the token-level output boundary of the declaration writer
type Writer interface {
	WriteKeyword(s string)
	WriteSymbol(s string)
	WriteIdentifier(s string)
	WriteTypeName(s string)
	WriteLiteral(s string)
	WriteSpace()
	WriteLine()
	Indent()
	Outdent()
}

// WriteList writes items separated by ", " using render for each item
func WriteList[T any](w Writer, items []T, render func(T)) {
	for i, item := range items {
		if i > 0 {
			w.WriteSymbol(",")
			w.WriteSpace()
		}
		render(item)
	}
}

// TokenKind classifies a token for decorating sinks
type TokenKind int

const (
	TokenKeyword TokenKind = iota
	TokenSymbol
	TokenIdentifier
	TokenTypeName
	TokenLiteral
)

// TextWriter writes plain text to an io.Writer, indenting each new line
type TextWriter struct {
	out         io.Writer
	indentUnit  string
	level       int
	atLineStart bool
	blankLines  int
	decorate    func(TokenKind, string) string
	err         error
}

// NewTextWriter creates a plain text sink; indent defaults to four spaces
func NewTextWriter(out io.Writer, indent string) *TextWriter {
	if indent == "" {
		indent = "    "
	}
	return &TextWriter{
		out:         out,
		indentUnit:  indent,
		atLineStart: true,
		blankLines:  1,
	}
}

// WriteKeyword implements Writer
func (w *TextWriter) WriteKeyword(s string) { w.token(TokenKeyword, s) }

// WriteSymbol implements Writer
func (w *TextWriter) WriteSymbol(s string) { w.token(TokenSymbol, s) }

// WriteIdentifier implements Writer
func (w *TextWriter) WriteIdentifier(s string) { w.token(TokenIdentifier, s) }

// WriteTypeName implements Writer
func (w *TextWriter) WriteTypeName(s string) { w.token(TokenTypeName, s) }

// WriteLiteral implements Writer
func (w *TextWriter) WriteLiteral(s string) { w.token(TokenLiteral, s) }

// WriteSpace writes a single space; leading spaces on a line are dropped
func (w *TextWriter) WriteSpace() {
	if w.atLineStart {
		return
	}
	w.write(" ")
}

// WriteLine ends the current line. At most one blank line is kept in a row.
func (w *TextWriter) WriteLine() {
	if w.atLineStart {
		if w.blankLines >= 1 {
			return
		}
		w.blankLines++
	} else {
		w.blankLines = 0
	}
	w.write("\n")
	w.atLineStart = true
}

// Indent increases the indentation of subsequent lines
func (w *TextWriter) Indent() { w.level++ }

// Outdent decreases the indentation of subsequent lines
func (w *TextWriter) Outdent() {
	if w.level > 0 {
		w.level--
	}
}

// Err returns the first error returned by the underlying io.Writer
func (w *TextWriter) Err() error { return w.err }

func (w *TextWriter) token(kind TokenKind, s string) {
	if s == "" {
		return
	}
	if w.atLineStart {
		w.write(strings.Repeat(w.indentUnit, w.level))
		w.atLineStart = false
	}
	if w.decorate != nil {
		s = w.decorate(kind, s)
	}
	w.write(s)
}

func (w *TextWriter) write(s string) {
	if w.err != nil {
		return
	}
	if _, err := io.WriteString(w.out, s); err != nil {
		w.err = fmt.Errorf("failed to write output: %w", err)
	}
}
