package codegen

import (
	"github.com/surfacegen/genapi/internal/metadata"
	"github.com/surfacegen/genapi/internal/syntax"
)

var kindKeywords = map[metadata.TypeKind]string{
	metadata.KindClass:     "class",
	metadata.KindStruct:    "struct",
	metadata.KindInterface: "interface",
	metadata.KindEnum:      "enum",
	metadata.KindDelegate:  "delegate",
}

var objectType = &metadata.NamedType{Namespace: "System", Name: "Object"}

func (w *Writer) writeTypeDeclaration(t *metadata.TypeDefinition) {
	w.writeAttributeLines(w.typeAttributes(t), "")
	if t.Kind == metadata.KindDelegate {
		w.writeDelegate(t)
		return
	}

	w.writeVisibility(t.Visibility)
	switch {
	case t.Kind != metadata.KindClass:
	case t.IsStatic():
		w.keyword("static")
	case t.IsAbstract:
		w.keyword("abstract")
	case t.IsSealed:
		w.keyword("sealed")
	}
	if t.Kind != metadata.KindEnum {
		w.keyword("partial")
	}
	w.keyword(kindKeywords[t.Kind])
	w.out.WriteIdentifier(EscapeIdentifier(t.Name))
	w.writeGenericParameters(t.GenericParameters)

	if t.Kind == metadata.KindEnum {
		if u := t.EnumUnderlyingType; u != nil && !metadata.IsNamed(u, "System.Int32") {
			w.writeBaseTypes([]metadata.TypeReference{u}, t)
		}
	} else {
		w.writeBaseTypes(w.baseTypes(t), t)
	}
	w.writeConstraints(t.GenericParameters)
	w.out.WriteLine()

	w.out.WriteSymbol("{")
	w.out.WriteLine()
	w.out.Indent()
	if t.Kind == metadata.KindEnum {
		w.writeEnumMembers(t)
	} else {
		w.writeTypeMembers(t)
	}
	w.out.Outdent()
	w.out.WriteSymbol("}")
	w.out.WriteLine()
}

// baseTypes returns the base class, when one must be written, followed by the
// included interfaces
func (w *Writer) baseTypes(t *metadata.TypeDefinition) []metadata.TypeReference {
	var list []metadata.TypeReference
	if t.Kind == metadata.KindClass && !t.IsStatic() {
		if base := w.baseClass(t); base != nil {
			list = append(list, base)
		}
	}
	for _, iface := range t.Interfaces {
		if w.filter.IncludeType(metadata.ResolveType(iface)) {
			list = append(list, iface)
		}
	}
	return list
}

// baseClass walks up from t's base to the first class the filter includes.
// System.Object is only written when AlwaysIncludeBase is set.
func (w *Writer) baseClass(t *metadata.TypeDefinition) metadata.TypeReference {
	for base := t.BaseType; base != nil; {
		if metadata.IsNamed(base, "System.Object") {
			break
		}
		def := metadata.ResolveType(base)
		if w.filter.IncludeType(def) {
			return base
		}
		// Skipping a generic base would need its arguments substituted into
		// the next base up; fall back to no base instead.
		if def == metadata.DummyType || len(def.GenericParameters) > 0 {
			break
		}
		base = def.BaseType
	}
	if w.opts.AlwaysIncludeBase {
		return objectType
	}
	return nil
}

func (w *Writer) writeBaseTypes(list []metadata.TypeReference, t *metadata.TypeDefinition) {
	if len(list) == 0 {
		return
	}
	w.out.WriteSpace()
	w.out.WriteSymbol(":")
	w.out.WriteSpace()
	where := t.FullName()
	syntax.WriteList(w.out, list, func(ref metadata.TypeReference) {
		w.writeTypeWithFlags(ref, w.names(), nil, where)
	})
}

func (w *Writer) writeGenericParameters(params []*metadata.GenericParameter) {
	if len(params) == 0 {
		return
	}
	w.out.WriteSymbol("<")
	syntax.WriteList(w.out, params, func(gp *metadata.GenericParameter) {
		switch gp.Variance {
		case metadata.VarianceCovariant:
			w.keyword("out")
		case metadata.VarianceContravariant:
			w.keyword("in")
		}
		w.out.WriteTypeName(EscapeIdentifier(gp.Name))
	})
	w.out.WriteSymbol(">")
}

func (w *Writer) writeConstraints(params []*metadata.GenericParameter) {
	for _, gp := range params {
		if !gp.HasConstraints() {
			continue
		}
		var items []func()
		switch {
		case gp.ValueTypeConstraint:
			items = append(items, func() { w.out.WriteKeyword("struct") })
		case gp.ReferenceTypeConstraint:
			items = append(items, func() { w.out.WriteKeyword("class") })
		}
		for _, c := range gp.Constraints {
			if gp.ValueTypeConstraint && metadata.IsNamed(c, "System.ValueType") {
				continue
			}
			items = append(items, func() { w.writeTypeWithFlags(c, w.names(), nil, gp.Name) })
		}
		if gp.DefaultConstructor && !gp.ValueTypeConstraint {
			items = append(items, func() {
				w.out.WriteKeyword("new")
				w.out.WriteSymbol("()")
			})
		}
		if len(items) == 0 {
			continue
		}

		w.out.WriteSpace()
		w.keyword("where")
		w.out.WriteTypeName(EscapeIdentifier(gp.Name))
		w.out.WriteSpace()
		w.out.WriteSymbol(":")
		w.out.WriteSpace()
		syntax.WriteList(w.out, items, func(item func()) { item() })
	}
}

func (w *Writer) writeEnumMembers(t *metadata.TypeDefinition) {
	underlying := t.EnumUnderlyingType
	for _, f := range t.Fields {
		if !f.IsConstant || !w.filter.IncludeMember(f) {
			continue
		}
		w.writeAttributeLines(w.fieldAttributes(f), "")
		w.out.WriteIdentifier(EscapeIdentifier(f.Name))
		if f.ConstantValue != nil {
			w.out.WriteSpace()
			w.out.WriteSymbol("=")
			w.out.WriteSpace()
			w.out.WriteLiteral(formatPrimitive(f.ConstantValue, metadata.FullNameOf(underlying)))
		}
		w.out.WriteSymbol(",")
		w.out.WriteLine()
	}
}

// writeTypeMembers writes fields, constructors, properties, events, methods and
// nested types, each group in metadata order
func (w *Writer) writeTypeMembers(t *metadata.TypeDefinition) {
	for _, f := range t.Fields {
		if w.filter.IncludeMember(f) {
			w.writeField(f)
		}
	}

	hasConstructor := false
	for _, m := range t.Constructors() {
		if w.filter.IncludeMember(m) {
			w.writeMethod(m)
			hasConstructor = true
		}
	}
	if !hasConstructor && needsSyntheticConstructor(t) {
		w.writeSyntheticConstructor(&SyntheticConstructor{Type: t})
	}

	for _, p := range t.Properties {
		if w.filter.IncludeMember(p) {
			w.writeProperty(p)
		}
	}
	for _, e := range t.Events {
		if w.filter.IncludeMember(e) {
			w.writeEvent(e)
		}
	}
	for _, m := range t.Methods {
		if !m.IsConstructor && w.filter.IncludeMember(m) {
			w.writeMethod(m)
		}
	}

	for _, nested := range t.NestedTypes {
		if w.filter.IncludeType(nested) {
			w.out.WriteLine()
			w.writeTypeDeclaration(nested)
		}
	}
}

// needsSyntheticConstructor reports whether a compiler would add a public
// default constructor to t if none were declared
func needsSyntheticConstructor(t *metadata.TypeDefinition) bool {
	return t.Kind == metadata.KindClass && !t.IsStatic()
}

func (w *Writer) writeDelegate(t *metadata.TypeDefinition) {
	var invoke *metadata.Method
	for _, m := range t.Methods {
		if m.Name == "Invoke" {
			invoke = m
			break
		}
	}

	w.writeVisibility(t.Visibility)
	w.keyword("delegate")
	if invoke != nil {
		w.writeSignatureType(invoke.ReturnType, invoke.ReturnAttributes, len(invoke.ReturnModifiers), t.FullName())
	} else {
		w.out.WriteKeyword("void")
	}
	w.out.WriteSpace()
	w.out.WriteIdentifier(EscapeIdentifier(t.Name))
	w.writeGenericParameters(t.GenericParameters)
	w.out.WriteSymbol("(")
	if invoke != nil {
		w.writeParameters(invoke.Parameters, invoke.DisplayName())
	}
	w.out.WriteSymbol(")")
	w.writeConstraints(t.GenericParameters)
	w.out.WriteSymbol(";")
	w.out.WriteLine()
}

func (w *Writer) keyword(kw string) {
	w.out.WriteKeyword(kw)
	w.out.WriteSpace()
}
