package filter

import (
	"github.com/surfacegen/genapi/internal/metadata"
)

// PublicOnlyFilter keeps what code outside the assembly can see, plus protected
// members, which declarations need in order to compile standalone.
type PublicOnlyFilter struct {
	includeForwardedTypes bool
	excludeAttributes     bool
}

// NewPublicOnlyFilter creates the default inclusion policy
func NewPublicOnlyFilter(includeForwardedTypes, excludeAttributes bool) *PublicOnlyFilter {
	return &PublicOnlyFilter{
		includeForwardedTypes: includeForwardedTypes,
		excludeAttributes:     excludeAttributes,
	}
}

// DefaultPublicOnlyFilter excludes forwarded types and attributes
func DefaultPublicOnlyFilter() *PublicOnlyFilter {
	return NewPublicOnlyFilter(false, true)
}

// IncludeForwardedTypes reports the forwarded-types setting
func (f *PublicOnlyFilter) IncludeForwardedTypes() bool { return f.includeForwardedTypes }

// ExcludeAttributes reports the attribute-exclusion setting
func (f *PublicOnlyFilter) ExcludeAttributes() bool { return f.excludeAttributes }

// IncludeNamespace implements Filter
func (f *PublicOnlyFilter) IncludeNamespace(ns *metadata.Namespace) bool {
	return anyTypeIncluded(f, ns, f.includeForwardedTypes)
}

// IncludeType implements Filter
func (f *PublicOnlyFilter) IncludeType(t *metadata.TypeDefinition) bool {
	if t == nil || t == metadata.DummyType {
		return false
	}
	if IsMarkerType(t) {
		return true
	}
	return t.IsVisibleOutsideAssembly()
}

// IncludeMember implements Filter
func (f *PublicOnlyFilter) IncludeMember(m metadata.Member) bool {
	if m == nil {
		return false
	}
	owner := m.ContainingType()
	if IsMarkerType(owner) {
		return true
	}
	if !owner.IsVisibleOutsideAssembly() {
		return false
	}

	switch m.MemberVisibility() {
	case metadata.VisibilityPublic:
		return true
	case metadata.VisibilityFamily, metadata.VisibilityFamilyOrAssembly:
		// Protected members are part of the inheritable contract even when the
		// owner is sealed and they are unreachable from outside.
		return true
	default:
		return metadata.IsMemberVisibleOutsideAssembly(m)
	}
}

// IncludeAttribute implements Filter
func (f *PublicOnlyFilter) IncludeAttribute(a *metadata.CustomAttribute) bool {
	if a == nil {
		return false
	}
	attrType := metadata.ResolveType(a.Type)
	if IsMarkerType(attrType) {
		return true
	}
	if f.excludeAttributes {
		return false
	}
	if !attrType.IsVisibleOutsideAssembly() {
		return false
	}

	for _, arg := range a.TypeOfArguments() {
		if metadata.IsReferenceVisibleOutsideAssembly(arg.Type) {
			continue
		}
		if !IsStringReplaceable(a.FullName()) {
			return false
		}
	}
	return true
}
