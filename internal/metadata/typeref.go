package metadata

import (
	"fmt"
	"strings"
)

// TypeReference is a use of a type inside a signature or attribute
type TypeReference interface {
	// String returns the CLR-style spelling used by metadata documents
	String() string
	typeReference()
}

// NamedType references a (possibly nested, possibly open generic) type by name
type NamedType struct {
	Namespace     string
	Name          string
	DeclaringType *NamedType
	Arity         int
	Definition    *TypeDefinition
}

func (*NamedType) typeReference() {}

// String implements TypeReference
func (n *NamedType) String() string {
	name := n.Name
	if n.Arity > 0 {
		name = fmt.Sprintf("%s`%d", name, n.Arity)
	}
	if n.DeclaringType != nil {
		return n.DeclaringType.String() + "+" + name
	}
	if n.Namespace == "" {
		return name
	}
	return n.Namespace + "." + name
}

// FullName returns the metadata name without arity suffixes
func (n *NamedType) FullName() string {
	if n.DeclaringType != nil {
		return n.DeclaringType.FullName() + "+" + n.Name
	}
	if n.Namespace == "" {
		return n.Name
	}
	return n.Namespace + "." + n.Name
}

// Resolve returns the definition, or DummyType when it was never resolved
func (n *NamedType) Resolve() *TypeDefinition {
	if n == nil || n.Definition == nil {
		return DummyType
	}
	return n.Definition
}

// GenericInstance is a closed generic type
type GenericInstance struct {
	Generic   *NamedType
	Arguments []TypeReference
}

func (*GenericInstance) typeReference() {}

// String implements TypeReference
func (g *GenericInstance) String() string {
	args := make([]string, len(g.Arguments))
	for i, a := range g.Arguments {
		args[i] = a.String()
	}
	return g.Generic.FullName() + "<" + strings.Join(args, ", ") + ">"
}

// GenericParameterRef is a use of a generic parameter in a signature
type GenericParameterRef struct {
	Name     string
	IsMethod bool
}

func (*GenericParameterRef) typeReference() {}

// String implements TypeReference
func (g *GenericParameterRef) String() string { return g.Name }

// ArrayType is a single or multi-dimensional array
type ArrayType struct {
	Element TypeReference
	Rank    int
}

func (*ArrayType) typeReference() {}

// String implements TypeReference
func (a *ArrayType) String() string {
	return a.Element.String() + "[" + strings.Repeat(",", max(a.Rank-1, 0)) + "]"
}

// PointerType is an unmanaged pointer
type PointerType struct {
	Target TypeReference
}

func (*PointerType) typeReference() {}

// String implements TypeReference
func (p *PointerType) String() string { return p.Target.String() + "*" }

// ResolveType returns the definition behind a named or generic reference.
// Other references and unresolved names yield DummyType.
func ResolveType(ref TypeReference) *TypeDefinition {
	switch r := ref.(type) {
	case *NamedType:
		return r.Resolve()
	case *GenericInstance:
		return r.Generic.Resolve()
	}
	return DummyType
}

// FullNameOf returns the metadata name of a named or generic reference,
// or "" for any other reference.
func FullNameOf(ref TypeReference) string {
	switch r := ref.(type) {
	case *NamedType:
		return r.FullName()
	case *GenericInstance:
		return r.Generic.FullName()
	}
	return ""
}

// IsNamed reports whether ref is the non-generic named type fullName
func IsNamed(ref TypeReference, fullName string) bool {
	n, ok := ref.(*NamedType)
	return ok && n.FullName() == fullName
}

// CustomModifier annotates a field, parameter or return type
type CustomModifier struct {
	IsOptional bool
	Modifier   TypeReference
}

// CustomAttribute is an attribute application
type CustomAttribute struct {
	Type           TypeReference
	Arguments      []AttributeArgument
	NamedArguments []NamedArgument
}

// FullName returns the attribute type's metadata name
func (a *CustomAttribute) FullName() string {
	return FullNameOf(a.Type)
}

// NamedArgument is a property or field assignment in an attribute application
type NamedArgument struct {
	Name    string
	IsField bool
	Value   AttributeArgument
}

// AttributeArgument is a constant, typeof or array attribute argument
type AttributeArgument interface {
	attributeArgument()
}

// ConstantArgument is a literal argument; Type is the declared argument type
type ConstantArgument struct {
	Type  TypeReference
	Value any
}

func (*ConstantArgument) attributeArgument() {}

// TypeOfArgument is a typeof(...) argument
type TypeOfArgument struct {
	Type TypeReference
}

func (*TypeOfArgument) attributeArgument() {}

// ArrayArgument is an array-valued argument
type ArrayArgument struct {
	ElementType TypeReference
	Elements    []AttributeArgument
}

func (*ArrayArgument) attributeArgument() {}

// TypeOfArguments collects every typeof argument, descending into arrays and named arguments
func (a *CustomAttribute) TypeOfArguments() []*TypeOfArgument {
	var out []*TypeOfArgument
	var walk func(arg AttributeArgument)
	walk = func(arg AttributeArgument) {
		switch v := arg.(type) {
		case *TypeOfArgument:
			out = append(out, v)
		case *ArrayArgument:
			for _, e := range v.Elements {
				walk(e)
			}
		}
	}
	for _, arg := range a.Arguments {
		walk(arg)
	}
	for _, named := range a.NamedArguments {
		walk(named.Value)
	}
	return out
}
