// Package metadata provides the read-only model of compiled program structure
// consumed by the declaration writer: assemblies, namespaces, types, members
// and custom attributes, plus a loader for metadata documents.
package metadata

import "strings"

// Definition is any node of the metadata graph that can be asked to render itself.
type Definition interface {
	DisplayName() string
}

// NamedEntity is a definition whose only renderable surface is its name.
type NamedEntity interface {
	Definition
	EntityName() string
}

// Member is a type member: *Method, *Property, *Event or *Field.
type Member interface {
	Definition
	MemberName() string
	ContainingType() *TypeDefinition
	MemberVisibility() Visibility
	CustomAttributes() []*CustomAttribute
}

// Visibility is the metadata accessibility of a type or member
type Visibility int

const (
	// VisibilityDefault means no accessibility was recorded
	VisibilityDefault Visibility = iota
	VisibilityPublic
	VisibilityPrivate
	VisibilityAssembly
	VisibilityFamily
	VisibilityFamilyOrAssembly
	VisibilityFamilyAndAssembly
)

var visibilityNames = map[Visibility]string{
	VisibilityDefault:           "default",
	VisibilityPublic:            "public",
	VisibilityPrivate:           "private",
	VisibilityAssembly:          "assembly",
	VisibilityFamily:            "family",
	VisibilityFamilyOrAssembly:  "family_or_assembly",
	VisibilityFamilyAndAssembly: "family_and_assembly",
}

// String returns the document spelling of the visibility
func (v Visibility) String() string {
	if name, ok := visibilityNames[v]; ok {
		return name
	}
	return "unknown"
}

// ParseVisibility parses the document spelling of a visibility.
// Both the metadata names and the C# keywords are accepted.
func ParseVisibility(s string) (Visibility, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return VisibilityDefault, true
	case "public":
		return VisibilityPublic, true
	case "private":
		return VisibilityPrivate, true
	case "assembly", "internal":
		return VisibilityAssembly, true
	case "family", "protected":
		return VisibilityFamily, true
	case "family_or_assembly", "protected_internal":
		return VisibilityFamilyOrAssembly, true
	case "family_and_assembly", "private_protected":
		return VisibilityFamilyAndAssembly, true
	}
	return VisibilityDefault, false
}

// TypeKind distinguishes the declaration form of a type
type TypeKind int

const (
	KindClass TypeKind = iota
	KindStruct
	KindInterface
	KindEnum
	KindDelegate
)

// Variance of a generic parameter
type Variance int

const (
	VarianceNone Variance = iota
	VarianceCovariant
	VarianceContravariant
)

// Assembly is the root of a metadata graph
type Assembly struct {
	Name               string
	Version            string
	Attributes         []*CustomAttribute
	SecurityAttributes []*SecurityAttribute
	Namespaces         []*Namespace
}

// DisplayName implements Definition
func (a *Assembly) DisplayName() string { return a.Name }

// Namespace groups the types sharing a namespace name
type Namespace struct {
	Name           string
	Types          []*TypeDefinition
	ForwardedTypes []*TypeForwarder
	Assembly       *Assembly
}

// DisplayName implements Definition
func (n *Namespace) DisplayName() string {
	if n.Name == "" {
		return "<global>"
	}
	return n.Name
}

// TypeForwarder records a type whose definition moved to another assembly
type TypeForwarder struct {
	Type           *TypeDefinition
	TargetAssembly string
}

// SecurityAttribute is an assembly-level declarative security record
type SecurityAttribute struct {
	Action     string
	Attributes []*CustomAttribute
}

// GenericParameter is a type or method generic parameter
type GenericParameter struct {
	Name                    string
	Index                   int
	Variance                Variance
	ReferenceTypeConstraint bool
	ValueTypeConstraint     bool
	DefaultConstructor      bool
	Constraints             []TypeReference
	Attributes              []*CustomAttribute
}

// DisplayName implements Definition
func (g *GenericParameter) DisplayName() string { return g.Name }

// EntityName implements NamedEntity
func (g *GenericParameter) EntityName() string { return g.Name }

// HasConstraints reports whether a where clause must be written
func (g *GenericParameter) HasConstraints() bool {
	return g.ReferenceTypeConstraint || g.ValueTypeConstraint || g.DefaultConstructor || len(g.Constraints) > 0
}

// TypeDefinition is a type declared in (or referenced from) an assembly
type TypeDefinition struct {
	Namespace          string
	Name               string
	Kind               TypeKind
	Visibility         Visibility
	DeclaringType      *TypeDefinition
	IsAbstract         bool
	IsSealed           bool
	IsSerializable     bool
	GenericParameters  []*GenericParameter
	BaseType           TypeReference
	Interfaces         []TypeReference
	EnumUnderlyingType TypeReference
	Attributes         []*CustomAttribute
	Fields             []*Field
	Methods            []*Method
	Properties         []*Property
	Events             []*Event
	NestedTypes        []*TypeDefinition
	Assembly           *Assembly

	// External marks a stub created for a type defined in a referenced assembly.
	External bool
}

// DummyType is the sentinel for a type reference that could not be resolved
var DummyType = &TypeDefinition{Name: "<dummy>", External: true}

// DisplayName implements Definition
func (t *TypeDefinition) DisplayName() string { return t.FullName() }

// IsStatic reports whether the type is a static class
func (t *TypeDefinition) IsStatic() bool {
	return t.Kind == KindClass && t.IsAbstract && t.IsSealed
}

// FullName returns the dotted name of the type, nested names joined by '.'
func (t *TypeDefinition) FullName() string {
	if t.DeclaringType != nil {
		return t.DeclaringType.FullName() + "." + t.Name
	}
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// MetadataName returns the CLR spelling of the type name: nested names joined by '+'
func (t *TypeDefinition) MetadataName() string {
	if t.DeclaringType != nil {
		return t.DeclaringType.MetadataName() + "+" + t.Name
	}
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// AssemblyName returns the name of the defining assembly, if known
func (t *TypeDefinition) AssemblyName() string {
	for cur := t; cur != nil; cur = cur.DeclaringType {
		if cur.Assembly != nil {
			return cur.Assembly.Name
		}
	}
	return ""
}

// Constructors returns the instance constructors of the type
func (t *TypeDefinition) Constructors() []*Method {
	var ctors []*Method
	for _, m := range t.Methods {
		if m.IsConstructor && !m.IsStatic {
			ctors = append(ctors, m)
		}
	}
	return ctors
}

// Members returns every member of the type in declaration order by kind
func (t *TypeDefinition) Members() []Member {
	members := make([]Member, 0, len(t.Fields)+len(t.Methods)+len(t.Properties)+len(t.Events))
	for _, f := range t.Fields {
		members = append(members, f)
	}
	for _, p := range t.Properties {
		members = append(members, p)
	}
	for _, e := range t.Events {
		members = append(members, e)
	}
	for _, m := range t.Methods {
		members = append(members, m)
	}
	return members
}

// IsEquivalent reports whether t names the given fully qualified metadata type
func (t *TypeDefinition) IsEquivalent(fullName string) bool {
	return t != nil && t.MetadataName() == fullName
}

// Parameter is a method or indexer parameter
type Parameter struct {
	Name            string
	Type            TypeReference
	IsOut           bool
	IsByRef         bool
	IsParamArray    bool
	HasDefault      bool
	DefaultValue    any
	Attributes      []*CustomAttribute
	CustomModifiers []CustomModifier
}

// DisplayName implements Definition
func (p *Parameter) DisplayName() string { return p.Name }

// EntityName implements NamedEntity
func (p *Parameter) EntityName() string { return p.Name }

// InterfaceMethodRef names an interface method implemented explicitly
type InterfaceMethodRef struct {
	Interface TypeReference
	Name      string
}

// Method is a method, constructor or accessor
type Method struct {
	Name                    string
	Visibility              Visibility
	IsStatic                bool
	IsAbstract              bool
	IsVirtual               bool
	IsOverride              bool
	IsSealed                bool
	IsConstructor           bool
	GenericParameters       []*GenericParameter
	Parameters              []*Parameter
	ReturnType              TypeReference
	ReturnAttributes        []*CustomAttribute
	ReturnModifiers         []CustomModifier
	Attributes              []*CustomAttribute
	ExplicitImplementations []InterfaceMethodRef

	declaringType *TypeDefinition
}

// DisplayName implements Definition
func (m *Method) DisplayName() string { return memberDisplayName(m.declaringType, m.Name) }

// MemberName implements Member
func (m *Method) MemberName() string { return m.Name }

// ContainingType implements Member
func (m *Method) ContainingType() *TypeDefinition { return m.declaringType }

// MemberVisibility implements Member
func (m *Method) MemberVisibility() Visibility { return m.Visibility }

// CustomAttributes implements Member
func (m *Method) CustomAttributes() []*CustomAttribute { return m.Attributes }

// SetContainingType links the method to its declaring type
func (m *Method) SetContainingType(t *TypeDefinition) { m.declaringType = t }

// Property is a property or indexer
type Property struct {
	Name       string
	Type       TypeReference
	Getter     *Method
	Setter     *Method
	Parameters []*Parameter
	Attributes []*CustomAttribute

	declaringType *TypeDefinition
}

// DisplayName implements Definition
func (p *Property) DisplayName() string { return memberDisplayName(p.declaringType, p.Name) }

// MemberName implements Member
func (p *Property) MemberName() string { return p.Name }

// ContainingType implements Member
func (p *Property) ContainingType() *TypeDefinition { return p.declaringType }

// MemberVisibility is the most accessible accessor's visibility
func (p *Property) MemberVisibility() Visibility { return widest(p.Getter, p.Setter) }

// CustomAttributes implements Member
func (p *Property) CustomAttributes() []*CustomAttribute { return p.Attributes }

// SetContainingType links the property and its accessors to the declaring type
func (p *Property) SetContainingType(t *TypeDefinition) {
	p.declaringType = t
	for _, acc := range p.Accessors() {
		acc.declaringType = t
	}
}

// Accessors returns the non-nil accessors
func (p *Property) Accessors() []*Method {
	return accessors(p.Getter, p.Setter)
}

// Event is an event with add/remove accessors
type Event struct {
	Name       string
	Type       TypeReference
	Adder      *Method
	Remover    *Method
	Attributes []*CustomAttribute

	declaringType *TypeDefinition
}

// DisplayName implements Definition
func (e *Event) DisplayName() string { return memberDisplayName(e.declaringType, e.Name) }

// MemberName implements Member
func (e *Event) MemberName() string { return e.Name }

// ContainingType implements Member
func (e *Event) ContainingType() *TypeDefinition { return e.declaringType }

// MemberVisibility is the most accessible accessor's visibility
func (e *Event) MemberVisibility() Visibility { return widest(e.Adder, e.Remover) }

// CustomAttributes implements Member
func (e *Event) CustomAttributes() []*CustomAttribute { return e.Attributes }

// SetContainingType links the event and its accessors to the declaring type
func (e *Event) SetContainingType(t *TypeDefinition) {
	e.declaringType = t
	for _, acc := range e.Accessors() {
		acc.declaringType = t
	}
}

// Accessors returns the non-nil accessors
func (e *Event) Accessors() []*Method {
	return accessors(e.Adder, e.Remover)
}

// Field is a field or enum member
type Field struct {
	Name            string
	Type            TypeReference
	Visibility      Visibility
	IsStatic        bool
	IsReadOnly      bool
	IsConstant      bool
	ConstantValue   any
	NotSerialized   bool
	CustomModifiers []CustomModifier
	Attributes      []*CustomAttribute

	declaringType *TypeDefinition
}

// DisplayName implements Definition
func (f *Field) DisplayName() string { return memberDisplayName(f.declaringType, f.Name) }

// MemberName implements Member
func (f *Field) MemberName() string { return f.Name }

// ContainingType implements Member
func (f *Field) ContainingType() *TypeDefinition { return f.declaringType }

// MemberVisibility implements Member
func (f *Field) MemberVisibility() Visibility { return f.Visibility }

// CustomAttributes implements Member
func (f *Field) CustomAttributes() []*CustomAttribute { return f.Attributes }

// SetContainingType links the field to its declaring type
func (f *Field) SetContainingType(t *TypeDefinition) { f.declaringType = t }

// AttachMembers sets the containing type of every member of t, recursively
// through nested types. Graphs built by hand must call it before use.
func AttachMembers(t *TypeDefinition) {
	for _, f := range t.Fields {
		f.SetContainingType(t)
	}
	for _, m := range t.Methods {
		m.SetContainingType(t)
	}
	for _, p := range t.Properties {
		p.SetContainingType(t)
	}
	for _, e := range t.Events {
		e.SetContainingType(t)
	}
	for _, nested := range t.NestedTypes {
		nested.DeclaringType = t
		if nested.Assembly == nil {
			nested.Assembly = t.Assembly
		}
		AttachMembers(nested)
	}
}

func memberDisplayName(t *TypeDefinition, name string) string {
	if t == nil {
		return name
	}
	return t.FullName() + "." + name
}

func accessors(a, b *Method) []*Method {
	var out []*Method
	if a != nil {
		out = append(out, a)
	}
	if b != nil {
		out = append(out, b)
	}
	return out
}

// accessibilityRank orders visibilities from least to most accessible
var accessibilityRank = map[Visibility]int{
	VisibilityDefault:           0,
	VisibilityPrivate:           1,
	VisibilityFamilyAndAssembly: 2,
	VisibilityAssembly:          3,
	VisibilityFamily:            3,
	VisibilityFamilyOrAssembly:  4,
	VisibilityPublic:            5,
}

func widest(a, b *Method) Visibility {
	switch {
	case a == nil && b == nil:
		return VisibilityDefault
	case a == nil:
		return b.Visibility
	case b == nil:
		return a.Visibility
	}
	if accessibilityRank[b.Visibility] > accessibilityRank[a.Visibility] {
		return b.Visibility
	}
	return a.Visibility
}
