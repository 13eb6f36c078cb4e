package metadata

import "fmt"

// DocID returns the documentation comment id of a type ("T:Ns.Outer.Inner`1")
func (t *TypeDefinition) DocID() string {
	return "T:" + t.docName()
}

func (t *TypeDefinition) docName() string {
	name := t.Name
	if n := len(t.GenericParameters); n > 0 {
		name = fmt.Sprintf("%s`%d", name, n)
	}
	if t.DeclaringType != nil {
		return t.DeclaringType.docName() + "." + name
	}
	if t.Namespace == "" {
		return name
	}
	return t.Namespace + "." + name
}

// MemberDocID returns the documentation comment id of a member without its
// parameter list ("M:Ns.Type.Name", "P:...", "E:...", "F:...").
func MemberDocID(m Member) string {
	owner := m.ContainingType()
	prefix := "M:"
	switch m.(type) {
	case *Property:
		prefix = "P:"
	case *Event:
		prefix = "E:"
	case *Field:
		prefix = "F:"
	}
	name := m.MemberName()
	if method, ok := m.(*Method); ok {
		if method.IsConstructor {
			name = "#ctor"
		}
		if n := len(method.GenericParameters); n > 0 {
			name = fmt.Sprintf("%s``%d", name, n)
		}
	}
	if owner == nil {
		return prefix + name
	}
	return prefix + owner.docName() + "." + name
}
