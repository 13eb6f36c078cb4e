package codegen

import (
	"fmt"
	"strings"

	"github.com/surfacegen/genapi/internal/errors"
	"github.com/surfacegen/genapi/internal/metadata"
	"github.com/surfacegen/genapi/internal/syntax"
)

// NameOptions controls how type references are spelled
type NameOptions struct {
	// UseKeywords writes int, string, object... instead of System.Int32 etc.
	UseKeywords bool
	// GlobalPrefix qualifies namespace-qualified names with global::
	GlobalPrefix bool
	// OmitNamespace drops the namespace of named types
	OmitNamespace bool
	// EmptyTypeArguments writes open generic types as List<> / Dictionary<,>
	EmptyTypeArguments bool
	// OmitTypeArguments writes generic types without any argument list
	OmitTypeArguments bool
}

const dynamicAttributeName = "System.Runtime.CompilerServices.DynamicAttribute"

var typeKeywords = map[string]string{
	"System.Boolean": "bool",
	"System.Byte":    "byte",
	"System.SByte":   "sbyte",
	"System.Char":    "char",
	"System.Decimal": "decimal",
	"System.Double":  "double",
	"System.Single":  "float",
	"System.Int16":   "short",
	"System.Int32":   "int",
	"System.Int64":   "long",
	"System.UInt16":  "ushort",
	"System.UInt32":  "uint",
	"System.UInt64":  "ulong",
	"System.Object":  "object",
	"System.String":  "string",
	"System.Void":    "void",
}

var reservedWords = map[string]bool{}

func init() {
	for _, kw := range strings.Fields(`abstract as base bool break byte case catch char checked class
		const continue decimal default delegate do double else enum event explicit extern false
		finally fixed float for foreach goto if implicit in int interface internal is lock long
		namespace new null object operator out override params private protected public readonly
		ref return sbyte sealed short sizeof stackalloc static string struct switch this throw
		true try typeof uint ulong unchecked unsafe ushort using virtual void volatile while`) {
		reservedWords[kw] = true
	}
}

// EscapeIdentifier prefixes reserved words with @
func EscapeIdentifier(name string) string {
	if reservedWords[name] {
		return "@" + name
	}
	return name
}

func escapeQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = EscapeIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// names returns the spelling used for signature types in the current mode
func (w *Writer) names() NameOptions {
	if w.opts.ForCompilation {
		return NameOptions{UseKeywords: true, GlobalPrefix: true}
	}
	return NameOptions{UseKeywords: true, OmitNamespace: true}
}

// WriteTypeName writes ref to the sink. dynamicFlags, when non-nil, is the
// flattened DynamicAttribute encoding for ref; an encoding that does not fit
// the shape of ref is ignored and ref is written literally.
func (w *Writer) WriteTypeName(ref metadata.TypeReference, opts NameOptions, dynamicFlags []bool) {
	w.writeTypeWithFlags(ref, opts, dynamicFlags, describeType(ref))
}

// FormatTypeName renders ref to a string with a throwaway sink
func FormatTypeName(ref metadata.TypeReference, opts NameOptions, dynamicFlags []bool) string {
	var sb strings.Builder
	w := &Writer{out: syntax.NewTextWriter(&sb, ""), logger: nopLogger}
	w.WriteTypeName(ref, opts, dynamicFlags)
	return sb.String()
}

// writeSignatureType writes the type of a field, parameter, property, event or
// return value, applying any dynamic marker found among attrs. lead is the
// number of positions the encoding reserves ahead of the type: one per custom
// modifier, then one for a by-ref.
func (w *Writer) writeSignatureType(ref metadata.TypeReference, attrs []*metadata.CustomAttribute, lead int, where string) {
	flags := w.dynamicFlags(attrs, where)
	if lead > 0 && len(flags) == 1 && flags[0] {
		// a bare marker covers the type itself
		flags = append(make([]bool, lead), true)
	}
	w.writeTypeAt(ref, w.names(), flags, lead, where)
}

func (w *Writer) writeTypeWithFlags(ref metadata.TypeReference, opts NameOptions, flags []bool, where string) {
	w.writeTypeAt(ref, opts, flags, 0, where)
}

func (w *Writer) writeTypeAt(ref metadata.TypeReference, opts NameOptions, flags []bool, lead int, where string) {
	if flags != nil {
		if err := checkDynamicFlags(ref, flags, lead); err != nil {
			w.warn(errors.NewMalformedDynamic(where, err.Error()))
			flags = nil
		}
	}
	index := lead
	w.writeType(ref, opts, flags, &index)
}

// dynamicFlags extracts the DynamicAttribute encoding from attrs. A marker
// without arguments means the whole type is dynamic. Returns nil when there is
// no usable marker.
func (w *Writer) dynamicFlags(attrs []*metadata.CustomAttribute, where string) []bool {
	for _, a := range attrs {
		if a.FullName() != dynamicAttributeName {
			continue
		}
		if len(a.Arguments) == 0 {
			return []bool{true}
		}
		flags, err := boolArray(a.Arguments)
		if err != nil {
			w.warn(errors.NewMalformedDynamic(where, err.Error()))
			return nil
		}
		return flags
	}
	return nil
}

func boolArray(args []metadata.AttributeArgument) ([]bool, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one bool[] argument, got %d arguments", len(args))
	}
	arr, ok := args[0].(*metadata.ArrayArgument)
	if !ok {
		return nil, fmt.Errorf("argument is not an array")
	}
	flags := make([]bool, 0, len(arr.Elements))
	for i, e := range arr.Elements {
		c, ok := e.(*metadata.ConstantArgument)
		if !ok {
			return nil, fmt.Errorf("element %d is not a constant", i)
		}
		b, ok := c.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("element %d is not a bool", i)
		}
		flags = append(flags, b)
	}
	return flags, nil
}

// checkDynamicFlags verifies that flags has lead false entries followed by one
// entry per type position of ref in pre-order, and that only System.Object
// positions are marked.
func checkDynamicFlags(ref metadata.TypeReference, flags []bool, lead int) error {
	for i := 0; i < lead && i < len(flags); i++ {
		if flags[i] {
			return fmt.Errorf("flag %d marks a modifier or by-ref position", i)
		}
	}
	index := lead
	var walk func(r metadata.TypeReference) error
	walk = func(r metadata.TypeReference) error {
		pos := index
		index++
		if pos < len(flags) && flags[pos] && !metadata.IsNamed(r, "System.Object") {
			return fmt.Errorf("flag %d marks %s, which is not System.Object", pos, describeType(r))
		}
		switch v := r.(type) {
		case *metadata.GenericInstance:
			for _, arg := range v.Arguments {
				if err := walk(arg); err != nil {
					return err
				}
			}
		case *metadata.ArrayType:
			return walk(v.Element)
		case *metadata.PointerType:
			return walk(v.Target)
		}
		return nil
	}
	if err := walk(ref); err != nil {
		return err
	}
	if index != len(flags) {
		return fmt.Errorf("%d flags for %d type positions in %s", len(flags), index, describeType(ref))
	}
	return nil
}

func describeType(ref metadata.TypeReference) string {
	if ref == nil {
		return "<nil>"
	}
	return ref.String()
}

// writeType walks ref in pre-order. Every position visited consumes one entry
// of flags through index; a position flagged true is written as dynamic and its
// subtree is not visited.
func (w *Writer) writeType(ref metadata.TypeReference, opts NameOptions, flags []bool, index *int) {
	pos := *index
	*index++
	if pos < len(flags) && flags[pos] {
		w.out.WriteKeyword("dynamic")
		return
	}

	switch r := ref.(type) {
	case *metadata.NamedType:
		w.writeNamedType(r, nil, opts, flags, index)
	case *metadata.GenericInstance:
		if r.Generic.FullName() == "System.Nullable" && len(r.Arguments) == 1 && !opts.OmitTypeArguments {
			w.writeType(r.Arguments[0], opts, flags, index)
			w.out.WriteSymbol("?")
			return
		}
		w.writeNamedType(r.Generic, r.Arguments, opts, flags, index)
	case *metadata.GenericParameterRef:
		w.out.WriteTypeName(EscapeIdentifier(r.Name))
	case *metadata.ArrayType:
		// C# lists ranks outermost first, the reverse of the CLR spelling
		var ranks []int
		var elem metadata.TypeReference = r
		for {
			arr, ok := elem.(*metadata.ArrayType)
			if !ok {
				break
			}
			if arr != r {
				*index++
			}
			ranks = append(ranks, arr.Rank)
			elem = arr.Element
		}
		w.writeType(elem, opts, flags, index)
		for _, rank := range ranks {
			w.out.WriteSymbol("[" + strings.Repeat(",", max(rank-1, 0)) + "]")
		}
	case *metadata.PointerType:
		w.writeType(r.Target, opts, flags, index)
		w.out.WriteSymbol("*")
	default:
		w.out.WriteKeyword("object")
	}
}

// writeNamedType writes a possibly nested, possibly generic named type. args
// are the flattened instance arguments; each nesting level takes as many as its
// arity and the innermost level takes the rest.
func (w *Writer) writeNamedType(n *metadata.NamedType, args []metadata.TypeReference, opts NameOptions, flags []bool, index *int) {
	if opts.UseKeywords && len(args) == 0 && n.DeclaringType == nil {
		if kw, ok := typeKeywords[n.FullName()]; ok {
			w.out.WriteKeyword(kw)
			return
		}
	}

	var chain []*metadata.NamedType
	for cur := n; cur != nil; cur = cur.DeclaringType {
		chain = append([]*metadata.NamedType{cur}, chain...)
	}

	remaining := args
	for i, level := range chain {
		if i > 0 {
			w.out.WriteSymbol(".")
		}
		name := EscapeIdentifier(level.Name)
		if i == 0 && !opts.OmitNamespace {
			if level.Namespace != "" {
				name = escapeQualified(level.Namespace) + "." + name
			}
			if opts.GlobalPrefix {
				name = "global::" + name
			}
		}
		w.out.WriteTypeName(name)

		if opts.OmitTypeArguments {
			continue
		}
		if args == nil {
			w.writeOpenArguments(level, opts)
			continue
		}
		take := level.Arity
		if i == len(chain)-1 || take > len(remaining) {
			take = len(remaining)
		}
		if take == 0 {
			continue
		}
		w.out.WriteSymbol("<")
		syntax.WriteList(w.out, remaining[:take], func(arg metadata.TypeReference) {
			w.writeType(arg, opts, flags, index)
		})
		w.out.WriteSymbol(">")
		remaining = remaining[take:]
	}
}

// writeOpenArguments writes the argument list of an uninstantiated generic type
func (w *Writer) writeOpenArguments(level *metadata.NamedType, opts NameOptions) {
	if level.Arity == 0 {
		return
	}
	params := level.Resolve().GenericParameters
	if opts.EmptyTypeArguments || len(params) != level.Arity {
		w.out.WriteSymbol("<" + strings.Repeat(",", level.Arity-1) + ">")
		return
	}
	w.out.WriteSymbol("<")
	syntax.WriteList(w.out, params, func(gp *metadata.GenericParameter) {
		w.out.WriteTypeName(EscapeIdentifier(gp.Name))
	})
	w.out.WriteSymbol(">")
}
