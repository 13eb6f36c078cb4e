// Package filter decides which namespaces, types, members and attributes
// belong in the emitted API surface.
package filter

import (
	"github.com/surfacegen/genapi/internal/metadata"
)

// Filter is an inclusion policy. Implementations never mutate the graph.
type Filter interface {
	IncludeNamespace(ns *metadata.Namespace) bool
	IncludeType(t *metadata.TypeDefinition) bool
	IncludeMember(m metadata.Member) bool
	IncludeAttribute(a *metadata.CustomAttribute) bool
}

// markerTypes are attribute types kept regardless of visibility. Compilers embed
// them as internal types in every assembly that uses them.
var markerTypes = map[string]struct{}{
	"System.Runtime.CompilerServices.NullableAttribute":        {},
	"System.Runtime.CompilerServices.NullableContextAttribute": {},
}

// stringReplaceableAttributes accept the assembly-qualified type name as a
// string wherever they accept a typeof argument.
var stringReplaceableAttributes = map[string]struct{}{
	"System.ComponentModel.DesignerAttribute":                                {},
	"System.ComponentModel.Design.Serialization.DesignerSerializerAttribute": {},
	"System.ComponentModel.EditorAttribute":                                  {},
	"System.ComponentModel.TypeConverterAttribute":                           {},
}

// IsMarkerType reports whether t is an always-included marker attribute type
func IsMarkerType(t *metadata.TypeDefinition) bool {
	if t == nil {
		return false
	}
	_, ok := markerTypes[t.MetadataName()]
	return ok
}

// IsStringReplaceable reports whether typeof arguments of the named attribute
// may be written as assembly-qualified type name strings
func IsStringReplaceable(attributeFullName string) bool {
	_, ok := stringReplaceableAttributes[attributeFullName]
	return ok
}

// anyTypeIncluded is the namespace rule shared by every policy: a namespace is
// included iff one of its types (and forwarders, when enabled) is.
func anyTypeIncluded(f Filter, ns *metadata.Namespace, forwarded bool) bool {
	if ns == nil {
		return false
	}
	for _, t := range ns.Types {
		if f.IncludeType(t) {
			return true
		}
	}
	if forwarded {
		for _, fwd := range ns.ForwardedTypes {
			if f.IncludeType(fwd.Type) {
				return true
			}
		}
	}
	return false
}
