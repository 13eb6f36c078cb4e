// Package codegen reconstructs source-level declarations from a metadata graph.
// The Writer walks a requested definition, consults a filter.Filter at every
// level and emits signatures (never bodies) into a syntax.Writer.
package codegen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/surfacegen/genapi/internal/errors"
	"github.com/surfacegen/genapi/internal/filter"
	"github.com/surfacegen/genapi/internal/metadata"
	"github.com/surfacegen/genapi/internal/syntax"
)

var nopLogger = zap.NewNop()

// Options configures a Writer for one emission session
type Options struct {
	// ForCompilation writes fully qualified, global::-prefixed names and the
	// pseudo-attributes a compiler needs; otherwise short display names.
	ForCompilation bool
	// AlwaysIncludeBase writes System.Object as an explicit base class
	AlwaysIncludeBase bool
	// PlatformNotSupportedExceptionMessage is carried for stub body generation
	PlatformNotSupportedExceptionMessage string
	// IncludeFakeAttributes writes pseudo-attributes even in display mode
	IncludeFakeAttributes bool
}

// SyntheticConstructor stands in for the private parameterless constructor
// written when none of a class's constructors survive filtering. It suppresses
// the public default constructor a compiler would otherwise add.
type SyntheticConstructor struct {
	Type *metadata.TypeDefinition
}

// DisplayName implements metadata.Definition
func (c *SyntheticConstructor) DisplayName() string {
	return c.Type.FullName() + "..ctor"
}

// Writer emits declarations. It holds configuration only and can be reused
// for any number of WriteDeclaration calls.
type Writer struct {
	out    syntax.Writer
	filter filter.Filter
	opts   Options
	logger *zap.Logger
}

// NewWriter creates a declaration writer. A nil filter selects the default
// public-only policy and a nil logger discards diagnostics.
func NewWriter(sink syntax.Writer, f filter.Filter, opts Options, logger *zap.Logger) (*Writer, error) {
	if sink == nil {
		return nil, errors.NewNilSink()
	}
	if f == nil {
		f = filter.DefaultPublicOnlyFilter()
	}
	if logger == nil {
		logger = nopLogger
	}
	return &Writer{out: sink, filter: f, opts: opts, logger: logger}, nil
}

// Options returns the writer configuration
func (w *Writer) Options() Options { return w.opts }

// PlatformNotSupportedExceptionMessage returns the configured stub message
func (w *Writer) PlatformNotSupportedExceptionMessage() string {
	return w.opts.PlatformNotSupportedExceptionMessage
}

// Filter returns the inclusion policy in use
func (w *Writer) Filter() filter.Filter { return w.filter }

// WriteDeclaration writes def. Definitions of an unknown kind produce a
// placeholder comment and a GEN611 warning.
func (w *Writer) WriteDeclaration(def metadata.Definition) {
	if isNilDefinition(def) {
		w.writeUnknown(def)
		return
	}

	switch d := def.(type) {
	case *metadata.Assembly:
		w.writeAssembly(d)
	case *metadata.Namespace:
		w.writeNamespace(d)
	case *metadata.TypeDefinition:
		w.writeTypeDeclaration(d)
	case metadata.Member:
		w.writeMember(d)
	case *SyntheticConstructor:
		w.writeSyntheticConstructor(d)
	case metadata.NamedEntity:
		w.out.WriteIdentifier(EscapeIdentifier(d.EntityName()))
	default:
		w.writeUnknown(def)
	}
}

func (w *Writer) writeUnknown(def metadata.Definition) {
	kind := fmt.Sprintf("%T", def)
	w.warn(errors.NewUnknownDefinition(kind))
	w.out.WriteLiteral(fmt.Sprintf("/* Unknown definition type %s */", kind))
	w.out.WriteLine()
}

// isNilDefinition reports whether def is nil or a nil pointer of a known kind.
// A synthetic constructor without a type counts as nil.
func isNilDefinition(def metadata.Definition) bool {
	switch d := def.(type) {
	case nil:
		return true
	case *metadata.Assembly:
		return d == nil
	case *metadata.Namespace:
		return d == nil
	case *metadata.TypeDefinition:
		return d == nil
	case *metadata.Method:
		return d == nil
	case *metadata.Property:
		return d == nil
	case *metadata.Event:
		return d == nil
	case *metadata.Field:
		return d == nil
	case *metadata.Parameter:
		return d == nil
	case *metadata.GenericParameter:
		return d == nil
	case *SyntheticConstructor:
		return d == nil || d.Type == nil
	}
	return false
}

func (w *Writer) writeAssembly(asm *metadata.Assembly) {
	for _, a := range w.writableAttributes(asm.Attributes) {
		w.writeAttribute(a, "assembly")
		w.out.WriteLine()
	}
	for _, sec := range asm.SecurityAttributes {
		for _, a := range sec.Attributes {
			if !w.filter.IncludeAttribute(a) {
				continue
			}
			w.writeSecurityAttribute(sec.Action, a)
			w.out.WriteLine()
		}
	}
	if w.forwardersIncluded() {
		for _, ns := range asm.Namespaces {
			for _, fwd := range ns.ForwardedTypes {
				if w.filter.IncludeType(fwd.Type) {
					w.writeTypeForwarder(fwd)
					w.out.WriteLine()
				}
			}
		}
	}
}

// forwardingPolicy is implemented by filters that can include forwarded types
type forwardingPolicy interface {
	IncludeForwardedTypes() bool
}

func (w *Writer) forwardersIncluded() bool {
	p, ok := w.filter.(forwardingPolicy)
	return ok && p.IncludeForwardedTypes()
}

// includedTypes returns the types of ns the filter includes. Forwarded types
// are written as assembly attributes, so they do not count.
func (w *Writer) includedTypes(ns *metadata.Namespace) []*metadata.TypeDefinition {
	var types []*metadata.TypeDefinition
	for _, t := range ns.Types {
		if w.filter.IncludeType(t) {
			types = append(types, t)
		}
	}
	return types
}

func (w *Writer) writeNamespace(ns *metadata.Namespace) {
	types := w.includedTypes(ns)
	if len(types) == 0 {
		return
	}

	wrapped := ns.Name != ""
	if wrapped {
		w.out.WriteKeyword("namespace")
		w.out.WriteSpace()
		w.out.WriteIdentifier(escapeQualified(ns.Name))
		w.out.WriteLine()
		w.out.WriteSymbol("{")
		w.out.WriteLine()
		w.out.Indent()
	}

	for i, t := range types {
		if i > 0 {
			w.out.WriteLine()
		}
		w.writeTypeDeclaration(t)
	}

	if wrapped {
		w.out.Outdent()
		w.out.WriteSymbol("}")
		w.out.WriteLine()
	}
}

func (w *Writer) writeSyntheticConstructor(c *SyntheticConstructor) {
	w.out.WriteKeyword("private")
	w.out.WriteSpace()
	w.out.WriteIdentifier(EscapeIdentifier(c.Type.Name))
	w.out.WriteSymbol("()")
	w.out.WriteSpace()
	w.out.WriteSymbol("{")
	w.out.WriteSpace()
	w.out.WriteSymbol("}")
	w.out.WriteLine()
}

func (w *Writer) warn(d *errors.Diagnostic) {
	w.logger.Warn(d.Message,
		zap.String("code", string(d.Code)),
		zap.String("type", d.Type),
		zap.String("definition", d.Definition),
	)
}
