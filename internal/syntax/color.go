package syntax

import (
	"io"

	"github.com/fatih/color"
)

// Palette maps token kinds to terminal colors
type Palette map[TokenKind]*color.Color

// DefaultPalette colors keywords blue, type names cyan and literals yellow
func DefaultPalette() Palette {
	return Palette{
		TokenKeyword:  color.New(color.FgBlue, color.Bold),
		TokenTypeName: color.New(color.FgCyan),
		TokenLiteral:  color.New(color.FgYellow),
	}
}

// NewColorWriter creates a text sink that colorizes tokens for terminal display.
// Colors are forced on regardless of color.NoColor so output can be piped to a pager.
func NewColorWriter(out io.Writer, indent string, palette Palette) *TextWriter {
	if palette == nil {
		palette = DefaultPalette()
	}
	for _, c := range palette {
		c.EnableColor()
	}
	w := NewTextWriter(out, indent)
	w.decorate = func(kind TokenKind, s string) string {
		if c, ok := palette[kind]; ok {
			return c.Sprint(s)
		}
		return s
	}
	return w
}
