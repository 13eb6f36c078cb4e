package codegen

import (
	"strings"

	"github.com/surfacegen/genapi/internal/metadata"
	"github.com/surfacegen/genapi/internal/syntax"
)

const volatileModifierName = "System.Runtime.CompilerServices.IsVolatile"

var visibilityKeywords = map[metadata.Visibility][]string{
	metadata.VisibilityPublic:           {"public"},
	metadata.VisibilityPrivate:          {"private"},
	metadata.VisibilityAssembly:         {"internal"},
	metadata.VisibilityFamily:           {"protected"},
	metadata.VisibilityFamilyOrAssembly: {"protected", "internal"},
	// Not "private protected": kept in the order existing surfaces were generated with.
	metadata.VisibilityFamilyAndAssembly: {"internal", "protected"},
}

// VisibilityKeywords returns the keywords written for v, nil for VisibilityDefault
func VisibilityKeywords(v metadata.Visibility) []string {
	return visibilityKeywords[v]
}

func (w *Writer) writeVisibility(v metadata.Visibility) {
	for _, kw := range visibilityKeywords[v] {
		w.keyword(kw)
	}
}

func (w *Writer) writeMember(m metadata.Member) {
	switch v := m.(type) {
	case *metadata.Method:
		if v.IsConstructor && v.IsStatic {
			return
		}
		w.writeMethod(v)
	case *metadata.Property:
		w.writeProperty(v)
	case *metadata.Event:
		w.writeEvent(v)
	case *metadata.Field:
		w.writeField(v)
	}
}

func (w *Writer) writeField(f *metadata.Field) {
	w.writeAttributeLines(w.fieldAttributes(f), "")
	w.writeVisibility(f.Visibility)
	if f.IsConstant {
		w.keyword("const")
	} else {
		if f.IsStatic {
			w.keyword("static")
		}
		if f.IsReadOnly {
			w.keyword("readonly")
		}
	}
	if hasVolatileModifier(f.CustomModifiers) {
		w.keyword("volatile")
	}
	w.writeSignatureType(f.Type, f.Attributes, len(f.CustomModifiers), f.DisplayName())
	w.out.WriteSpace()
	w.out.WriteIdentifier(EscapeIdentifier(f.Name))
	if f.IsConstant {
		w.out.WriteSpace()
		w.out.WriteSymbol("=")
		w.out.WriteSpace()
		w.out.WriteLiteral(w.formatConstant(f.ConstantValue, f.Type))
	}
	w.out.WriteSymbol(";")
	w.out.WriteLine()
}

// hasVolatileModifier reports whether mods carry the volatile marker; no other
// custom modifier has a source spelling
func hasVolatileModifier(mods []metadata.CustomModifier) bool {
	for _, m := range mods {
		if metadata.FullNameOf(m.Modifier) == volatileModifierName {
			return true
		}
	}
	return false
}

func (w *Writer) writeMethod(m *metadata.Method) {
	owner := m.ContainingType()
	where := m.DisplayName()
	w.writeAttributeLines(w.writableAttributes(m.Attributes), "")
	w.writeAttributeLines(w.writableAttributes(m.ReturnAttributes), "return")

	explicit := explicitImplementation(m)
	w.writeMemberModifiers(m, owner, explicit)

	if m.IsConstructor {
		name := ""
		if owner != nil {
			name = owner.Name
		}
		w.out.WriteIdentifier(EscapeIdentifier(name))
	} else {
		w.writeSignatureType(m.ReturnType, m.ReturnAttributes, len(m.ReturnModifiers), where)
		w.out.WriteSpace()
		name := m.Name
		if explicit != nil {
			w.writeExplicitPrefix(explicit, where)
			name = explicit.Name
			if name == "" {
				name = m.Name[strings.LastIndex(m.Name, ".")+1:]
			}
		}
		w.out.WriteIdentifier(EscapeIdentifier(name))
		w.writeGenericParameters(m.GenericParameters)
	}

	w.out.WriteSymbol("(")
	w.writeParameters(m.Parameters, where)
	w.out.WriteSymbol(")")
	w.writeConstraints(m.GenericParameters)
	w.out.WriteSymbol(";")
	w.out.WriteLine()
}

// writeMemberModifiers writes visibility and inheritance modifiers. Interface
// members and explicit implementations take neither.
func (w *Writer) writeMemberModifiers(m *metadata.Method, owner *metadata.TypeDefinition, explicit *metadata.InterfaceMethodRef) {
	inInterface := owner != nil && owner.Kind == metadata.KindInterface
	if inInterface || explicit != nil {
		if m.IsStatic {
			w.keyword("static")
		}
		return
	}

	w.writeVisibility(m.Visibility)
	if m.IsStatic {
		w.keyword("static")
	}
	switch {
	case m.IsOverride:
		if m.IsAbstract {
			w.keyword("abstract")
		}
		if m.IsSealed {
			w.keyword("sealed")
		}
		w.keyword("override")
	case m.IsAbstract:
		w.keyword("abstract")
	case m.IsVirtual && !m.IsSealed && (owner == nil || !owner.IsSealed):
		w.keyword("virtual")
	}
}

// explicitImplementation returns the interface method m implements explicitly,
// or nil when m is an ordinary (possibly implicit) implementation
func explicitImplementation(m *metadata.Method) *metadata.InterfaceMethodRef {
	if m == nil || m.Visibility != metadata.VisibilityPrivate || len(m.ExplicitImplementations) == 0 {
		return nil
	}
	return &m.ExplicitImplementations[0]
}

func (w *Writer) writeExplicitPrefix(impl *metadata.InterfaceMethodRef, where string) {
	w.writeTypeWithFlags(impl.Interface, w.names(), nil, where)
	w.out.WriteSymbol(".")
}

func (w *Writer) writeParameters(params []*metadata.Parameter, where string) {
	syntax.WriteList(w.out, params, func(p *metadata.Parameter) {
		for _, a := range w.writableAttributes(p.Attributes) {
			w.writeAttribute(a, "")
			w.out.WriteSpace()
		}
		switch {
		case p.IsParamArray || hasAttribute(p.Attributes, paramArrayAttributeName):
			w.keyword("params")
		case p.IsOut:
			w.keyword("out")
		case p.IsByRef:
			w.keyword("ref")
		}
		lead := len(p.CustomModifiers)
		if p.IsOut || p.IsByRef {
			lead++
		}
		w.writeSignatureType(p.Type, p.Attributes, lead, where+"("+p.Name+")")
		w.out.WriteSpace()
		w.out.WriteIdentifier(EscapeIdentifier(p.Name))
		if p.HasDefault {
			w.out.WriteSpace()
			w.out.WriteSymbol("=")
			w.out.WriteSpace()
			w.out.WriteLiteral(w.formatConstant(p.DefaultValue, p.Type))
		}
	})
}

// includedAccessors returns the accessors the filter keeps, or all of them
// when it keeps none individually
func (w *Writer) includedAccessors(all []*metadata.Method) []*metadata.Method {
	var kept []*metadata.Method
	for _, acc := range all {
		if w.filter.IncludeMember(acc) {
			kept = append(kept, acc)
		}
	}
	if len(kept) == 0 {
		return all
	}
	return kept
}

func (w *Writer) writeProperty(p *metadata.Property) {
	owner := p.ContainingType()
	where := p.DisplayName()
	accessors := w.includedAccessors(p.Accessors())
	if len(accessors) == 0 {
		return
	}
	primary := accessors[0]
	explicit := explicitImplementation(primary)
	inInterface := owner != nil && owner.Kind == metadata.KindInterface

	w.writeAttributeLines(w.writableAttributes(p.Attributes), "")
	if inInterface || explicit != nil {
		w.writeMemberModifiers(primary, owner, explicit)
	} else {
		w.writeVisibility(p.MemberVisibility())
		w.writeInheritanceOnly(primary, owner)
	}

	w.writeSignatureType(p.Type, p.Attributes, 0, where)
	w.out.WriteSpace()
	if explicit != nil {
		w.writeExplicitPrefix(explicit, where)
	}
	if len(p.Parameters) > 0 {
		w.out.WriteKeyword("this")
		w.out.WriteSymbol("[")
		w.writeParameters(p.Parameters, where)
		w.out.WriteSymbol("]")
	} else {
		w.out.WriteIdentifier(EscapeIdentifier(p.Name))
	}

	w.out.WriteSpace()
	w.out.WriteSymbol("{")
	w.out.WriteSpace()
	for _, acc := range accessors {
		if !inInterface && explicit == nil && acc.Visibility != p.MemberVisibility() {
			w.writeVisibility(acc.Visibility)
		}
		if acc == p.Getter {
			w.out.WriteKeyword("get")
		} else {
			w.out.WriteKeyword("set")
		}
		w.out.WriteSymbol(";")
		w.out.WriteSpace()
	}
	w.out.WriteSymbol("}")
	w.out.WriteLine()
}

func (w *Writer) writeEvent(e *metadata.Event) {
	owner := e.ContainingType()
	where := e.DisplayName()
	accessors := w.includedAccessors(e.Accessors())
	if len(accessors) == 0 {
		return
	}
	primary := accessors[0]
	explicit := explicitImplementation(primary)
	inInterface := owner != nil && owner.Kind == metadata.KindInterface

	w.writeAttributeLines(w.writableAttributes(e.Attributes), "")
	if inInterface || explicit != nil {
		w.writeMemberModifiers(primary, owner, explicit)
	} else {
		w.writeVisibility(e.MemberVisibility())
		w.writeInheritanceOnly(primary, owner)
	}

	w.keyword("event")
	w.writeSignatureType(e.Type, e.Attributes, 0, where)
	w.out.WriteSpace()
	if explicit != nil {
		w.writeExplicitPrefix(explicit, where)
	}
	w.out.WriteIdentifier(EscapeIdentifier(e.Name))
	w.out.WriteSymbol(";")
	w.out.WriteLine()
}

// writeInheritanceOnly writes the modifiers of an accessor without its visibility
func (w *Writer) writeInheritanceOnly(acc *metadata.Method, owner *metadata.TypeDefinition) {
	stripped := *acc
	stripped.Visibility = metadata.VisibilityDefault
	w.writeMemberModifiers(&stripped, owner, nil)
}
