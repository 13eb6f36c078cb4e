package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/surfacegen/genapi/internal/filter"
	"github.com/surfacegen/genapi/internal/metadata"
	"github.com/surfacegen/genapi/internal/syntax"
)

const (
	paramArrayAttributeName    = "System.ParamArrayAttribute"
	defaultMemberAttributeName = "System.Reflection.DefaultMemberAttribute"
)

// consumedAttributes are expressed through syntax (dynamic, params) rather
// than written as attributes
var consumedAttributes = map[string]bool{
	dynamicAttributeName:    true,
	paramArrayAttributeName: true,
}

// writableAttributes returns the attributes of attrs that are both included by
// the filter and written as attribute syntax
func (w *Writer) writableAttributes(attrs []*metadata.CustomAttribute) []*metadata.CustomAttribute {
	var out []*metadata.CustomAttribute
	for _, a := range attrs {
		if consumedAttributes[a.FullName()] || !w.filter.IncludeAttribute(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func hasAttribute(attrs []*metadata.CustomAttribute, fullName string) bool {
	for _, a := range attrs {
		if a.FullName() == fullName {
			return true
		}
	}
	return false
}

func (w *Writer) fakeAttributesEnabled() bool {
	return w.opts.ForCompilation || w.opts.IncludeFakeAttributes
}

func pseudoAttribute(namespace, name string) *metadata.CustomAttribute {
	return &metadata.CustomAttribute{Type: &metadata.NamedType{Namespace: namespace, Name: name}}
}

// typeAttributes adds the Serializable pseudo-attribute and drops the
// DefaultMember attribute a compiler generates for indexers
func (w *Writer) typeAttributes(t *metadata.TypeDefinition) []*metadata.CustomAttribute {
	hasIndexer := false
	for _, p := range t.Properties {
		hasIndexer = hasIndexer || len(p.Parameters) > 0
	}
	var out []*metadata.CustomAttribute
	for _, a := range w.writableAttributes(t.Attributes) {
		if hasIndexer && a.FullName() == defaultMemberAttributeName {
			continue
		}
		out = append(out, a)
	}
	if t.IsSerializable && w.fakeAttributesEnabled() {
		out = append(out, pseudoAttribute("System", "SerializableAttribute"))
	}
	return out
}

func (w *Writer) fieldAttributes(f *metadata.Field) []*metadata.CustomAttribute {
	out := w.writableAttributes(f.Attributes)
	if f.NotSerialized && w.fakeAttributesEnabled() {
		out = append(out, pseudoAttribute("System", "NonSerializedAttribute"))
	}
	return out
}

func (w *Writer) writeAttributeLines(attrs []*metadata.CustomAttribute, target string) {
	for _, a := range attrs {
		w.writeAttribute(a, target)
		w.out.WriteLine()
	}
}

// writeAttribute writes [target: Type(args, Name = value)]
func (w *Writer) writeAttribute(a *metadata.CustomAttribute, target string) {
	w.out.WriteSymbol("[")
	if target != "" {
		w.out.WriteKeyword(target)
		w.out.WriteSymbol(":")
		w.out.WriteSpace()
	}
	w.writeAttributeBody(a, nil)
	w.out.WriteSymbol("]")
}

func (w *Writer) writeSecurityAttribute(action string, a *metadata.CustomAttribute) {
	securityAction := &metadata.NamedType{Namespace: "System.Security.Permissions", Name: "SecurityAction"}
	w.out.WriteSymbol("[")
	w.out.WriteKeyword("assembly")
	w.out.WriteSymbol(":")
	w.out.WriteSpace()
	w.writeAttributeBody(a, func() {
		w.writeTypeWithFlags(securityAction, w.names(), nil, "")
		w.out.WriteSymbol(".")
		w.out.WriteIdentifier(EscapeIdentifier(action))
	})
	w.out.WriteSymbol("]")
}

func (w *Writer) writeTypeForwarder(fwd *metadata.TypeForwarder) {
	w.writeAttribute(&metadata.CustomAttribute{
		Type:      &metadata.NamedType{Namespace: "System.Runtime.CompilerServices", Name: "TypeForwardedToAttribute"},
		Arguments: []metadata.AttributeArgument{&metadata.TypeOfArgument{Type: namedRef(fwd.Type)}},
	}, "assembly")
}

func namedRef(t *metadata.TypeDefinition) *metadata.NamedType {
	n := &metadata.NamedType{Namespace: t.Namespace, Name: t.Name, Arity: len(t.GenericParameters), Definition: t}
	if t.DeclaringType != nil {
		n.DeclaringType = namedRef(t.DeclaringType)
	}
	return n
}

// writeAttributeBody writes the attribute type and its argument list. leading,
// when set, writes an extra first positional argument.
func (w *Writer) writeAttributeBody(a *metadata.CustomAttribute, leading func()) {
	w.writeTypeWithFlags(a.Type, w.names(), nil, a.FullName())

	var items []func()
	if leading != nil {
		items = append(items, leading)
	}
	for _, arg := range a.Arguments {
		items = append(items, func() { w.writeArgument(arg, a) })
	}
	for _, named := range a.NamedArguments {
		items = append(items, func() {
			w.out.WriteIdentifier(EscapeIdentifier(named.Name))
			w.out.WriteSpace()
			w.out.WriteSymbol("=")
			w.out.WriteSpace()
			w.writeArgument(named.Value, a)
		})
	}
	if len(items) == 0 {
		return
	}
	w.out.WriteSymbol("(")
	syntax.WriteList(w.out, items, func(item func()) { item() })
	w.out.WriteSymbol(")")
}

func (w *Writer) writeArgument(arg metadata.AttributeArgument, owner *metadata.CustomAttribute) {
	switch v := arg.(type) {
	case *metadata.ConstantArgument:
		w.out.WriteLiteral(w.formatConstant(v.Value, v.Type))
	case *metadata.TypeOfArgument:
		if !metadata.IsReferenceVisibleOutsideAssembly(v.Type) && filter.IsStringReplaceable(owner.FullName()) {
			w.out.WriteLiteral(quoteString(assemblyQualifiedName(v.Type)))
			return
		}
		w.out.WriteKeyword("typeof")
		w.out.WriteSymbol("(")
		opts := w.names()
		opts.EmptyTypeArguments = true
		w.writeTypeWithFlags(v.Type, opts, nil, owner.FullName())
		w.out.WriteSymbol(")")
	case *metadata.ArrayArgument:
		w.keyword("new")
		w.writeTypeWithFlags(v.ElementType, w.names(), nil, owner.FullName())
		w.out.WriteSymbol("[]")
		w.out.WriteSpace()
		w.out.WriteSymbol("{")
		w.out.WriteSpace()
		if len(v.Elements) > 0 {
			syntax.WriteList(w.out, v.Elements, func(e metadata.AttributeArgument) { w.writeArgument(e, owner) })
			w.out.WriteSpace()
		}
		w.out.WriteSymbol("}")
	default:
		w.out.WriteKeyword("null")
	}
}

// assemblyQualifiedName spells ref the way string-typed designer arguments expect
func assemblyQualifiedName(ref metadata.TypeReference) string {
	name := ref.String()
	if asm := metadata.ResolveType(ref).AssemblyName(); asm != "" {
		name += ", " + asm
	}
	return name
}

var valueTypeNames = map[string]bool{
	"System.Boolean": true, "System.Byte": true, "System.SByte": true, "System.Char": true,
	"System.Decimal": true, "System.Double": true, "System.Single": true, "System.Int16": true,
	"System.Int32": true, "System.Int64": true, "System.UInt16": true, "System.UInt32": true,
	"System.UInt64": true, "System.IntPtr": true, "System.UIntPtr": true,
}

func isValueType(ref metadata.TypeReference) bool {
	switch r := ref.(type) {
	case *metadata.GenericParameterRef:
		return true
	case *metadata.NamedType:
		if valueTypeNames[r.FullName()] {
			return true
		}
		kind := r.Resolve().Kind
		return r.Definition != nil && (kind == metadata.KindStruct || kind == metadata.KindEnum)
	}
	return false
}

// formatConstant renders a constant of the given declared type as a literal.
// Enum constants are cast from their underlying value.
func (w *Writer) formatConstant(v any, typ metadata.TypeReference) string {
	if v == nil {
		if isValueType(typ) {
			return "default"
		}
		return "null"
	}
	def := metadata.ResolveType(typ)
	if def != metadata.DummyType && def.Kind == metadata.KindEnum {
		value := formatPrimitive(v, metadata.FullNameOf(def.EnumUnderlyingType))
		if strings.HasPrefix(value, "-") {
			value = "(" + value + ")"
		}
		return "(" + FormatTypeName(typ, w.names(), nil) + ")" + value
	}
	return formatPrimitive(v, metadata.FullNameOf(typ))
}

var floatKeywords = map[string]string{
	"System.Single":  "float",
	"System.Double":  "double",
	"System.Decimal": "decimal",
}

// formatPrimitive renders a loader-coerced constant (bool, string, rune,
// int64, uint64, float64) with the suffix its declared type needs
func formatPrimitive(v any, typeName string) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case string:
		return quoteString(x)
	case rune:
		return quoteChar(x)
	case int:
		return formatPrimitive(int64(x), typeName)
	case int64:
		s := strconv.FormatInt(x, 10)
		switch typeName {
		case "System.Int64":
			if x > math.MaxInt32 || x < math.MinInt32 {
				s += "L"
			}
		case "System.Single", "System.Double", "System.Decimal":
			return formatPrimitive(float64(x), typeName)
		}
		return s
	case uint64:
		s := strconv.FormatUint(x, 10)
		switch typeName {
		case "System.UInt32":
			if x > math.MaxInt32 {
				s += "U"
			}
		case "System.UInt64":
			if x > math.MaxInt64 {
				s += "UL"
			}
		}
		return s
	case float64:
		return formatFloat(x, typeName)
	}
	return fmt.Sprint(v)
}

func formatFloat(x float64, typeName string) string {
	kw, ok := floatKeywords[typeName]
	if !ok {
		kw = "double"
	}
	switch {
	case math.IsNaN(x):
		return kw + ".NaN"
	case math.IsInf(x, 1):
		return kw + ".PositiveInfinity"
	case math.IsInf(x, -1):
		return kw + ".NegativeInfinity"
	}
	switch typeName {
	case "System.Single":
		return strconv.FormatFloat(x, 'g', -1, 32) + "F"
	case "System.Decimal":
		return strconv.FormatFloat(x, 'f', -1, 64) + "M"
	}
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			sb.WriteString(`\"`)
			continue
		}
		writeEscaped(&sb, r)
	}
	sb.WriteByte('"')
	return sb.String()
}

func quoteChar(r rune) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	if r == '\'' {
		sb.WriteString(`\'`)
	} else {
		writeEscaped(&sb, r)
	}
	sb.WriteByte('\'')
	return sb.String()
}

func writeEscaped(sb *strings.Builder, r rune) {
	switch r {
	case '\\':
		sb.WriteString(`\\`)
	case 0:
		sb.WriteString(`\0`)
	case '\a':
		sb.WriteString(`\a`)
	case '\b':
		sb.WriteString(`\b`)
	case '\f':
		sb.WriteString(`\f`)
	case '\n':
		sb.WriteString(`\n`)
	case '\r':
		sb.WriteString(`\r`)
	case '\t':
		sb.WriteString(`\t`)
	case '\v':
		sb.WriteString(`\v`)
	default:
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) || r == 0x2028 || r == 0x2029 {
			fmt.Fprintf(sb, `\u%04X`, r)
			return
		}
		sb.WriteRune(r)
	}
}
