package metadata

import (
	"fmt"
	"math"
	"strings"

	"github.com/surfacegen/genapi/internal/errors"
)

// keywordAliases lets documents spell primitive types with C# keywords
var keywordAliases = map[string]string{
	"bool":    "System.Boolean",
	"byte":    "System.Byte",
	"sbyte":   "System.SByte",
	"char":    "System.Char",
	"decimal": "System.Decimal",
	"double":  "System.Double",
	"float":   "System.Single",
	"short":   "System.Int16",
	"int":     "System.Int32",
	"long":    "System.Int64",
	"ushort":  "System.UInt16",
	"uint":    "System.UInt32",
	"ulong":   "System.UInt64",
	"object":  "System.Object",
	"string":  "System.String",
	"void":    "System.Void",
}

// Load builds a resolved metadata graph from a decoded document.
// Every problem found is reported; the returned error is an errors.DiagnosticList.
func Load(doc *Document) (*Assembly, error) {
	l := &loader{
		asm:      &Assembly{Name: doc.Assembly, Version: doc.Version},
		types:    make(map[string]*TypeDefinition),
		external: make(map[string]*TypeDefinition),
	}

	for _, ref := range doc.References {
		l.declareReference(ref)
	}

	var pending []pendingType
	for _, nsDoc := range doc.Namespaces {
		ns := &Namespace{Name: nsDoc.Name, Assembly: l.asm}
		for _, td := range nsDoc.Types {
			def := l.declareType(nsDoc.Name, nil, td, &pending)
			if def != nil {
				ns.Types = append(ns.Types, def)
			}
		}
		for _, fd := range nsDoc.Forwarded {
			if fwd := l.declareForwarder(nsDoc.Name, fd); fwd != nil {
				ns.ForwardedTypes = append(ns.ForwardedTypes, fwd)
			}
		}
		l.asm.Namespaces = append(l.asm.Namespaces, ns)
	}

	asmScope := genericScope{}
	l.asm.Attributes = l.attributes(doc.Attributes, doc.Assembly, asmScope)
	for _, sd := range doc.SecurityAttributes {
		l.asm.SecurityAttributes = append(l.asm.SecurityAttributes, &SecurityAttribute{
			Action:     sd.Action,
			Attributes: l.attributes(sd.Attributes, doc.Assembly, asmScope),
		})
	}

	for _, p := range pending {
		l.defineType(p)
	}
	for _, ns := range l.asm.Namespaces {
		for _, t := range ns.Types {
			AttachMembers(t)
		}
	}

	if err := l.errs.Err(); err != nil {
		return nil, err
	}
	return l.asm, nil
}

type pendingType struct {
	def   *TypeDefinition
	doc   TypeDoc
	scope genericScope
}

type genericScope struct {
	typeParams   map[string]bool
	methodParams map[string]bool
}

func (s genericScope) withTypeParams(params []*GenericParameter) genericScope {
	next := genericScope{typeParams: make(map[string]bool), methodParams: s.methodParams}
	for name := range s.typeParams {
		next.typeParams[name] = true
	}
	for _, gp := range params {
		next.typeParams[gp.Name] = true
	}
	return next
}

func (s genericScope) withMethodParams(params []*GenericParameter) genericScope {
	next := genericScope{typeParams: s.typeParams, methodParams: make(map[string]bool)}
	for _, gp := range params {
		next.methodParams[gp.Name] = true
	}
	return next
}

type loader struct {
	asm      *Assembly
	types    map[string]*TypeDefinition
	external map[string]*TypeDefinition
	errs     errors.DiagnosticList
}

func (l *loader) fail(d *errors.Diagnostic) {
	l.errs = append(l.errs, d)
}

func (l *loader) declareReference(ref ReferenceDoc) {
	def := l.externalType(ref.Type, 0)
	if def == DummyType {
		l.fail(errors.NewMissingName("reference", l.asm.Name))
		return
	}
	if ref.Assembly != "" {
		def.Assembly = &Assembly{Name: ref.Assembly}
	}
	def.IsSealed = ref.Sealed
	if kind, ok := l.kind(ref.Type, ref.Kind); ok {
		def.Kind = kind
	}
	if ref.Visibility != "" {
		def.Visibility = l.visibility(ref.Type, ref.Visibility)
	}
}

func (l *loader) declareForwarder(namespace string, fd ForwardDoc) *TypeForwarder {
	full := fd.Type
	if namespace != "" && !strings.HasPrefix(full, namespace+".") {
		full = namespace + "." + full
	}
	def := l.externalType(full, 0)
	if def == DummyType {
		l.fail(errors.NewMissingName("forwarded type", namespace))
		return nil
	}
	def.Assembly = &Assembly{Name: fd.Assembly}
	if kind, ok := l.kind(full, fd.Kind); ok {
		def.Kind = kind
	}
	if fd.Visibility != "" {
		def.Visibility = l.visibility(full, fd.Visibility)
	}
	return &TypeForwarder{Type: def, TargetAssembly: fd.Assembly}
}

func (l *loader) declareType(namespace string, parent *TypeDefinition, td TypeDoc, pending *[]pendingType) *TypeDefinition {
	if td.Name == "" {
		owner := namespace
		if parent != nil {
			owner = parent.FullName()
		}
		l.fail(errors.NewMissingName("type", owner))
		return nil
	}

	def := &TypeDefinition{
		Namespace:      namespace,
		Name:           stripArity(td.Name),
		DeclaringType:  parent,
		IsAbstract:     td.Abstract || td.Static,
		IsSealed:       td.Sealed || td.Static,
		IsSerializable: td.Serializable,
		Assembly:       l.asm,
	}
	if parent != nil {
		def.Namespace = ""
	}
	def.Visibility = l.visibility(def.FullName(), defaultString(td.Visibility, "public"))
	if kind, ok := l.kind(def.FullName(), td.Kind); ok {
		def.Kind = kind
	}
	switch def.Kind {
	case KindStruct, KindEnum, KindDelegate:
		def.IsSealed = true
	case KindInterface:
		def.IsAbstract = true
	}
	def.GenericParameters = l.genericParameterShells(td.GenericParameters)

	key := def.MetadataName()
	if _, exists := l.types[key]; exists {
		l.fail(errors.NewDuplicateType(key))
		return nil
	}
	l.types[key] = def

	var parentScope genericScope
	for _, p := range *pending {
		if p.def == parent {
			parentScope = p.scope
			break
		}
	}
	*pending = append(*pending, pendingType{def: def, doc: td, scope: parentScope.withTypeParams(def.GenericParameters)})

	for _, nd := range td.NestedTypes {
		if nested := l.declareType(namespace, def, nd, pending); nested != nil {
			def.NestedTypes = append(def.NestedTypes, nested)
		}
	}
	return def
}

func (l *loader) defineType(p pendingType) {
	def, td, scope := p.def, p.doc, p.scope
	owner := def.FullName()

	l.constrain(def.GenericParameters, td.GenericParameters, owner, scope)

	switch {
	case td.BaseType != "":
		def.BaseType = l.typeRef(owner, td.BaseType, scope)
	case def.Kind == KindStruct:
		def.BaseType = l.typeRef(owner, "System.ValueType", scope)
	case def.Kind == KindEnum:
		def.BaseType = l.typeRef(owner, "System.Enum", scope)
	case def.Kind == KindDelegate:
		def.BaseType = l.typeRef(owner, "System.MulticastDelegate", scope)
	case def.Kind == KindClass && def.MetadataName() != "System.Object":
		def.BaseType = l.typeRef(owner, "System.Object", scope)
	}
	for _, iface := range td.Interfaces {
		if ref := l.typeRef(owner, iface, scope); ref != nil {
			def.Interfaces = append(def.Interfaces, ref)
		}
	}
	if def.Kind == KindEnum {
		def.EnumUnderlyingType = l.typeRef(owner, defaultString(td.UnderlyingType, "System.Int32"), scope)
	}
	def.Attributes = l.attributes(td.Attributes, owner, scope)

	for _, fd := range td.Fields {
		if f := l.field(def, fd, scope); f != nil {
			def.Fields = append(def.Fields, f)
		}
	}
	for _, md := range td.Methods {
		if m := l.method(def, md, scope); m != nil {
			def.Methods = append(def.Methods, m)
		}
	}
	for _, pd := range td.Properties {
		if prop := l.property(def, pd, scope); prop != nil {
			def.Properties = append(def.Properties, prop)
		}
	}
	for _, ed := range td.Events {
		if ev := l.event(def, ed, scope); ev != nil {
			def.Events = append(def.Events, ev)
		}
	}
}

func (l *loader) field(owner *TypeDefinition, fd FieldDoc, scope genericScope) *Field {
	if fd.Name == "" {
		l.fail(errors.NewMissingName("field", owner.FullName()))
		return nil
	}
	where := owner.FullName() + "." + fd.Name
	f := &Field{
		Name:          fd.Name,
		IsStatic:      fd.Static || fd.Const,
		IsReadOnly:    fd.ReadOnly,
		IsConstant:    fd.Const,
		NotSerialized: fd.NotSerialized,
		Attributes:    l.attributes(fd.Attributes, where, scope),
	}
	f.Visibility = l.visibility(where, defaultString(fd.Visibility, "public"))

	if owner.Kind == KindEnum {
		f.IsConstant, f.IsStatic = true, true
		f.Visibility = VisibilityPublic
		if fd.Type == "" {
			f.Type = owner.selfReference()
		}
	}
	if f.Type == nil {
		f.Type = l.typeRef(where, fd.Type, scope)
	}
	f.CustomModifiers = l.modifiers(fd.Modifiers, where, scope)
	if f.IsConstant {
		f.ConstantValue = l.constant(where, fd.Value, constantTypeName(f.Type))
	}
	return f
}

func (l *loader) method(owner *TypeDefinition, md MethodDoc, scope genericScope) *Method {
	if md.Name == "" && !md.Constructor {
		l.fail(errors.NewMissingName("method", owner.FullName()))
		return nil
	}
	m := &Method{
		Name:          md.Name,
		IsStatic:      md.Static,
		IsAbstract:    md.Abstract,
		IsVirtual:     md.Virtual || md.Abstract || md.Override,
		IsOverride:    md.Override,
		IsSealed:      md.Sealed,
		IsConstructor: md.Constructor || md.Name == ".ctor" || md.Name == ".cctor",
	}
	if m.IsConstructor {
		if md.Name == ".cctor" {
			m.IsStatic = true
		}
		m.Name = ".ctor"
		if m.IsStatic {
			m.Name = ".cctor"
		}
	}
	where := owner.FullName() + "." + m.Name
	m.Visibility = l.visibility(where, defaultString(md.Visibility, "public"))
	if owner.Kind == KindInterface {
		m.IsAbstract, m.IsVirtual = !m.IsStatic, !m.IsStatic
	}

	m.GenericParameters = l.genericParameterShells(md.GenericParameters)
	scope = scope.withMethodParams(m.GenericParameters)
	l.constrain(m.GenericParameters, md.GenericParameters, where, scope)

	m.Parameters = l.parameters(md.Parameters, where, scope)
	m.ReturnType = l.typeRef(where, defaultString(md.Returns, "System.Void"), scope)
	m.ReturnAttributes = l.attributes(md.ReturnAttributes, where, scope)
	m.ReturnModifiers = l.modifiers(md.ReturnModifiers, where, scope)
	m.Attributes = l.attributes(md.Attributes, where, scope)
	m.ExplicitImplementations = l.implements(md.Implements, where, scope)
	return m
}

func (l *loader) property(owner *TypeDefinition, pd PropertyDoc, scope genericScope) *Property {
	if pd.Name == "" {
		l.fail(errors.NewMissingName("property", owner.FullName()))
		return nil
	}
	where := owner.FullName() + "." + pd.Name
	p := &Property{
		Name:       pd.Name,
		Type:       l.typeRef(where, pd.Type, scope),
		Parameters: l.parameters(pd.Parameters, where, scope),
		Attributes: l.attributes(pd.Attributes, where, scope),
	}
	if pd.Get != nil {
		p.Getter = l.accessor(owner, "get_"+pd.Name, *pd.Get, scope)
		p.Getter.ReturnType = p.Type
		p.Getter.Parameters = p.Parameters
	}
	if pd.Set != nil {
		p.Setter = l.accessor(owner, "set_"+pd.Name, *pd.Set, scope)
		p.Setter.ReturnType = l.typeRef(where, "System.Void", scope)
		p.Setter.Parameters = append(append([]*Parameter{}, p.Parameters...), &Parameter{Name: "value", Type: p.Type})
	}
	return p
}

func (l *loader) event(owner *TypeDefinition, ed EventDoc, scope genericScope) *Event {
	if ed.Name == "" {
		l.fail(errors.NewMissingName("event", owner.FullName()))
		return nil
	}
	where := owner.FullName() + "." + ed.Name
	e := &Event{
		Name:       ed.Name,
		Type:       l.typeRef(where, ed.Type, scope),
		Attributes: l.attributes(ed.Attributes, where, scope),
	}
	void := l.typeRef(where, "System.Void", scope)
	e.Adder = l.accessor(owner, "add_"+ed.Name, ed.AccessorDoc, scope)
	e.Remover = l.accessor(owner, "remove_"+ed.Name, ed.AccessorDoc, scope)
	for _, acc := range e.Accessors() {
		acc.ReturnType = void
		acc.Parameters = []*Parameter{{Name: "value", Type: e.Type}}
	}
	return e
}

func (l *loader) accessor(owner *TypeDefinition, name string, ad AccessorDoc, scope genericScope) *Method {
	where := owner.FullName() + "." + name
	m := &Method{
		Name:       name,
		IsStatic:   ad.Static,
		IsAbstract: ad.Abstract,
		IsVirtual:  ad.Virtual || ad.Abstract || ad.Override,
		IsOverride: ad.Override,
		IsSealed:   ad.Sealed,
	}
	m.Visibility = l.visibility(where, defaultString(ad.Visibility, "public"))
	if owner.Kind == KindInterface {
		m.IsAbstract, m.IsVirtual = !m.IsStatic, !m.IsStatic
	}
	m.ExplicitImplementations = l.implements(ad.Implements, where, scope)
	return m
}

func (l *loader) parameters(docs []ParameterDoc, where string, scope genericScope) []*Parameter {
	var params []*Parameter
	for i, pd := range docs {
		name := pd.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		p := &Parameter{
			Name:         name,
			Type:         l.typeRef(where, pd.Type, scope),
			IsOut:        pd.Out,
			IsByRef:      pd.Ref || pd.Out,
			IsParamArray: pd.Params,
			HasDefault:   pd.Default != nil || pd.DefaultNull,
		}
		if pd.Default != nil {
			p.DefaultValue = l.constant(where+"("+name+")", pd.Default, constantTypeName(p.Type))
		}
		p.CustomModifiers = l.modifiers(pd.Modifiers, where, scope)
		p.Attributes = l.attributes(pd.Attributes, where, scope)
		params = append(params, p)
	}
	return params
}

func (l *loader) implements(docs []ImplementsDoc, where string, scope genericScope) []InterfaceMethodRef {
	var refs []InterfaceMethodRef
	for _, d := range docs {
		if ref := l.typeRef(where, d.Interface, scope); ref != nil {
			refs = append(refs, InterfaceMethodRef{Interface: ref, Name: d.Method})
		}
	}
	return refs
}

func (l *loader) modifiers(docs []ModifierDoc, where string, scope genericScope) []CustomModifier {
	var mods []CustomModifier
	for _, d := range docs {
		if ref := l.typeRef(where, d.Type, scope); ref != nil {
			mods = append(mods, CustomModifier{IsOptional: d.Optional, Modifier: ref})
		}
	}
	return mods
}

func (l *loader) genericParameterShells(docs []GenericParameterDoc) []*GenericParameter {
	params := make([]*GenericParameter, 0, len(docs))
	for i, d := range docs {
		gp := &GenericParameter{
			Name:                    d.Name,
			Index:                   i,
			ReferenceTypeConstraint: d.Class,
			ValueTypeConstraint:     d.Struct,
			DefaultConstructor:      d.New,
		}
		switch strings.ToLower(d.Variance) {
		case "out", "covariant":
			gp.Variance = VarianceCovariant
		case "in", "contravariant":
			gp.Variance = VarianceContravariant
		}
		params = append(params, gp)
	}
	return params
}

func (l *loader) constrain(params []*GenericParameter, docs []GenericParameterDoc, where string, scope genericScope) {
	for i, d := range docs {
		for _, c := range d.Constraints {
			if ref := l.typeRef(where, c, scope); ref != nil {
				params[i].Constraints = append(params[i].Constraints, ref)
			}
		}
		params[i].Attributes = l.attributes(d.Attributes, where, scope)
	}
}

func (l *loader) attributes(docs []AttributeDoc, where string, scope genericScope) []*CustomAttribute {
	var attrs []*CustomAttribute
	for _, ad := range docs {
		attr := &CustomAttribute{Type: l.typeRef(where, ad.Type, scope)}
		if attr.Type == nil {
			continue
		}
		for _, arg := range ad.Args {
			if a := l.argument(where, arg, scope); a != nil {
				attr.Arguments = append(attr.Arguments, a)
			}
		}
		for _, named := range ad.Named {
			if a := l.argument(where, named.Value, scope); a != nil {
				attr.NamedArguments = append(attr.NamedArguments, NamedArgument{Name: named.Name, IsField: named.Field, Value: a})
			}
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func (l *loader) argument(where string, doc ArgumentDoc, scope genericScope) AttributeArgument {
	switch {
	case doc.TypeOf != "":
		ref := l.typeRef(where, doc.TypeOf, scope)
		if ref == nil {
			return nil
		}
		return &TypeOfArgument{Type: ref}
	case doc.Array != nil:
		arr := &ArrayArgument{}
		for _, e := range doc.Array {
			if a := l.argument(where, e, scope); a != nil {
				arr.Elements = append(arr.Elements, a)
			}
		}
		elemType := doc.Type
		if elemType == "" {
			elemType = "System.Object"
			if len(arr.Elements) > 0 {
				if c, ok := arr.Elements[0].(*ConstantArgument); ok {
					elemType = FullNameOf(c.Type)
				}
			}
		}
		arr.ElementType = l.typeRef(where, elemType, scope)
		return arr
	case doc.Null:
		return &ConstantArgument{Type: l.typeRef(where, defaultString(doc.Type, "System.Object"), scope)}
	}

	typeName := doc.Type
	if typeName == "" {
		typeName = inferConstantType(doc.Value)
	}
	ref := l.typeRef(where, typeName, scope)
	if ref == nil {
		return nil
	}
	return &ConstantArgument{Type: ref, Value: l.constant(where, doc.Value, constantTypeName(ref))}
}

// typeRef parses and resolves a type expression; failures are recorded and yield nil
func (l *loader) typeRef(where, src string, scope genericScope) TypeReference {
	if strings.TrimSpace(src) == "" {
		l.fail(errors.NewInvalidTypeExpression(where, src, fmt.Errorf("empty type")))
		return nil
	}
	expr, err := parseTypeExpr(src)
	if err != nil {
		l.fail(errors.NewInvalidTypeExpression(where, src, err))
		return nil
	}
	return l.build(expr, scope)
}

func (l *loader) build(expr *typeExpr, scope genericScope) TypeReference {
	name := expr.Name
	if alias, ok := keywordAliases[name]; ok {
		name = alias
	}

	var ref TypeReference
	switch {
	case len(expr.Args) == 0 && scope.methodParams[name]:
		ref = &GenericParameterRef{Name: name, IsMethod: true}
	case len(expr.Args) == 0 && scope.typeParams[name]:
		ref = &GenericParameterRef{Name: name}
	default:
		named := l.named(name, len(expr.Args))
		if len(expr.Args) == 0 {
			ref = named
			break
		}
		inst := &GenericInstance{Generic: named}
		for _, arg := range expr.Args {
			inst.Arguments = append(inst.Arguments, l.build(arg, scope))
		}
		ref = inst
	}

	for _, s := range expr.Suffixes {
		if s == 0 {
			ref = &PointerType{Target: ref}
		} else {
			ref = &ArrayType{Element: ref, Rank: s}
		}
	}
	return ref
}

func (l *loader) named(full string, argc int) *NamedType {
	def := l.lookup(full, argc)
	return namedTypeOf(def)
}

func namedTypeOf(def *TypeDefinition) *NamedType {
	n := &NamedType{
		Namespace:  def.Namespace,
		Name:       def.Name,
		Arity:      len(def.GenericParameters),
		Definition: def,
	}
	if def.DeclaringType != nil {
		n.DeclaringType = namedTypeOf(def.DeclaringType)
	}
	return n
}

// selfReference returns an open reference to t
func (t *TypeDefinition) selfReference() *NamedType {
	return namedTypeOf(t)
}

func (l *loader) lookup(full string, argc int) *TypeDefinition {
	key := metadataKey(full)
	if def, ok := l.types[key]; ok {
		return def
	}
	return l.externalType(full, argc)
}

// externalType returns (creating on first use) the stub for a referenced type
func (l *loader) externalType(full string, argc int) *TypeDefinition {
	namespace, chain := splitTypeName(full)
	if chain[0] == "" {
		return DummyType
	}

	var parent *TypeDefinition
	key := namespace
	for i, name := range chain {
		if i == 0 {
			if key != "" {
				key += "."
			}
			key += name
		} else {
			key += "+" + name
		}
		if local, ok := l.types[key]; ok {
			parent = local
			continue
		}
		def, ok := l.external[key]
		if !ok {
			def = &TypeDefinition{
				Name:          name,
				Visibility:    VisibilityPublic,
				DeclaringType: parent,
				External:      true,
			}
			if parent == nil {
				def.Namespace = namespace
			}
			l.external[key] = def
		}
		parent = def
	}

	if argc > 0 && len(parent.GenericParameters) == 0 {
		for i := 0; i < argc; i++ {
			name := "T"
			if argc > 1 {
				name = fmt.Sprintf("T%d", i+1)
			}
			parent.GenericParameters = append(parent.GenericParameters, &GenericParameter{Name: name, Index: i})
		}
	}
	return parent
}

func metadataKey(full string) string {
	namespace, chain := splitTypeName(full)
	key := strings.Join(chain, "+")
	if namespace != "" {
		key = namespace + "." + key
	}
	return key
}

func (l *loader) visibility(where, value string) Visibility {
	v, ok := ParseVisibility(value)
	if !ok {
		l.fail(errors.NewInvalidVisibility(where, value))
	}
	return v
}

func (l *loader) kind(where, value string) (TypeKind, bool) {
	switch strings.ToLower(value) {
	case "", "class":
		return KindClass, true
	case "struct", "valuetype":
		return KindStruct, true
	case "interface":
		return KindInterface, true
	case "enum":
		return KindEnum, true
	case "delegate":
		return KindDelegate, true
	}
	l.fail(errors.NewInvalidTypeKind(where, value))
	return KindClass, false
}

// constantTypeName returns the metadata name used to coerce a constant:
// enums are coerced through their underlying type.
func constantTypeName(ref TypeReference) string {
	def := ResolveType(ref)
	if def.Kind == KindEnum {
		if def.EnumUnderlyingType != nil {
			return FullNameOf(def.EnumUnderlyingType)
		}
		return "System.Int32"
	}
	return FullNameOf(ref)
}

func inferConstantType(v any) string {
	switch n := v.(type) {
	case string:
		return "System.String"
	case bool:
		return "System.Boolean"
	case int:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return "System.Int32"
		}
		return "System.Int64"
	case int64:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return "System.Int32"
		}
		return "System.Int64"
	case uint64:
		return "System.UInt64"
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return "System.Int32"
		}
		return "System.Double"
	}
	return "System.Object"
}

// constant coerces a decoded YAML/JSON value to the Go representation of typeName:
// bool, string, rune, int64, uint64 or float64.
func (l *loader) constant(where string, v any, typeName string) any {
	if v == nil {
		return nil
	}
	out, ok := coerceConstant(v, typeName)
	if !ok {
		l.fail(errors.NewInvalidConstant(where, v, typeName))
		return nil
	}
	return out
}

func coerceConstant(v any, typeName string) (any, bool) {
	switch typeName {
	case "System.Boolean":
		b, ok := v.(bool)
		return b, ok
	case "System.String":
		s, ok := v.(string)
		return s, ok
	case "System.Char":
		s, ok := v.(string)
		if !ok || len([]rune(s)) != 1 {
			return nil, false
		}
		return []rune(s)[0], true
	case "System.SByte", "System.Int16", "System.Int32", "System.Int64":
		return toInt64(v)
	case "System.Byte", "System.UInt16", "System.UInt32", "System.UInt64":
		i, ok := toInt64(v)
		if ok && i >= 0 {
			return uint64(i), true
		}
		if u, isU := v.(uint64); isU {
			return u, true
		}
		return nil, false
	case "System.Single", "System.Double", "System.Decimal":
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
		return nil, false
	}

	switch n := v.(type) {
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return v, true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
