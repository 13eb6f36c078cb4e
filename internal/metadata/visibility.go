package metadata

// IsVisibleOutsideAssembly reports whether code in another assembly can name t
func (t *TypeDefinition) IsVisibleOutsideAssembly() bool {
	if t == nil || t == DummyType {
		return false
	}
	if t.DeclaringType == nil {
		return t.Visibility == VisibilityPublic
	}
	switch t.Visibility {
	case VisibilityPublic:
		return t.DeclaringType.IsVisibleOutsideAssembly()
	case VisibilityFamily, VisibilityFamilyOrAssembly:
		return !t.DeclaringType.IsSealed && t.DeclaringType.IsVisibleOutsideAssembly()
	}
	return false
}

// IsMemberVisibleOutsideAssembly reports whether code in another assembly can
// reach m. Protected members of sealed types are not reachable. Non-public
// methods that explicitly implement a method of a visible interface are.
func IsMemberVisibleOutsideAssembly(m Member) bool {
	if m == nil {
		return false
	}
	owner := m.ContainingType()
	if !owner.IsVisibleOutsideAssembly() {
		return false
	}

	switch v := m.(type) {
	case *Method:
		return isMethodVisible(v, owner)
	case *Property:
		for _, acc := range v.Accessors() {
			if isMethodVisible(acc, owner) {
				return true
			}
		}
		return false
	case *Event:
		for _, acc := range v.Accessors() {
			if isMethodVisible(acc, owner) {
				return true
			}
		}
		return false
	}
	return visibilityReachable(m.MemberVisibility(), owner)
}

func isMethodVisible(m *Method, owner *TypeDefinition) bool {
	if visibilityReachable(m.Visibility, owner) {
		return true
	}
	for _, impl := range m.ExplicitImplementations {
		if ResolveType(impl.Interface).IsVisibleOutsideAssembly() {
			return true
		}
	}
	return false
}

func visibilityReachable(v Visibility, owner *TypeDefinition) bool {
	switch v {
	case VisibilityPublic:
		return true
	case VisibilityFamily, VisibilityFamilyOrAssembly:
		return !owner.IsSealed
	}
	return false
}

// IsReferenceVisibleOutsideAssembly reports whether every type named by ref,
// including generic arguments and array elements, is visible outside its assembly.
func IsReferenceVisibleOutsideAssembly(ref TypeReference) bool {
	switch r := ref.(type) {
	case *NamedType:
		return r.Resolve().IsVisibleOutsideAssembly()
	case *GenericInstance:
		if !r.Generic.Resolve().IsVisibleOutsideAssembly() {
			return false
		}
		for _, arg := range r.Arguments {
			if !IsReferenceVisibleOutsideAssembly(arg) {
				return false
			}
		}
		return true
	case *ArrayType:
		return IsReferenceVisibleOutsideAssembly(r.Element)
	case *PointerType:
		return IsReferenceVisibleOutsideAssembly(r.Target)
	case *GenericParameterRef:
		return true
	}
	return false
}
