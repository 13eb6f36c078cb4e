package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surfacegen/genapi/internal/metadata"
)

const surfaceDoc = `
assembly: Contoso.UI
namespaces:
  - name: System.Runtime.CompilerServices
    types:
      - name: NullableAttribute
        visibility: assembly
        base: System.Attribute
        fields:
          - name: NullableFlags
            type: byte[]
            visibility: assembly
  - name: Contoso.UI
    types:
      - name: Widget
        fields:
          - name: Name
            type: string
          - name: _secret
            type: string
            visibility: private
          - name: Shared
            type: int
            visibility: family_or_assembly
          - name: Tight
            type: int
            visibility: family_and_assembly
        methods:
          - name: Render
          - name: OnRender
            visibility: family
            virtual: true
          - name: Helper
            visibility: assembly
          - name: Dispose
            visibility: private
            implements:
              - interface: System.IDisposable
                method: Dispose
      - name: SealedWidget
        sealed: true
        methods:
          - name: OnRender
            visibility: family
      - name: Plumbing
        visibility: assembly
        methods:
          - name: Run
  - name: Contoso.UI.Internal
    types:
      - name: Cache
        visibility: assembly
    forwarded:
      - type: Moved
        assembly: Contoso.Core
`

func loadSurface(t *testing.T) *metadata.Assembly {
	t.Helper()
	doc, err := metadata.Decode([]byte(surfaceDoc), metadata.FormatYAML)
	require.NoError(t, err)
	asm, err := metadata.Load(doc)
	require.NoError(t, err)
	return asm
}

func findType(t *testing.T, asm *metadata.Assembly, fullName string) *metadata.TypeDefinition {
	t.Helper()
	for _, ns := range asm.Namespaces {
		for _, typ := range ns.Types {
			if typ.FullName() == fullName {
				return typ
			}
		}
	}
	t.Fatalf("type %s not found", fullName)
	return nil
}

func findMember(t *testing.T, typ *metadata.TypeDefinition, name string) metadata.Member {
	t.Helper()
	for _, m := range typ.Members() {
		if m.MemberName() == name {
			return m
		}
	}
	t.Fatalf("member %s not found on %s", name, typ.FullName())
	return nil
}

func TestPublicOnlyFilter_Types(t *testing.T) {
	asm := loadSurface(t)
	f := DefaultPublicOnlyFilter()

	assert.True(t, f.IncludeType(findType(t, asm, "Contoso.UI.Widget")))
	assert.False(t, f.IncludeType(findType(t, asm, "Contoso.UI.Plumbing")))
	assert.True(t, f.IncludeType(findType(t, asm, "System.Runtime.CompilerServices.NullableAttribute")),
		"marker types are kept even when internal")
	assert.False(t, f.IncludeType(nil))
	assert.False(t, f.IncludeType(metadata.DummyType))
}

func TestPublicOnlyFilter_Members(t *testing.T) {
	asm := loadSurface(t)
	f := DefaultPublicOnlyFilter()
	widget := findType(t, asm, "Contoso.UI.Widget")

	tests := []struct {
		member   string
		expected bool
	}{
		{"Name", true},
		{"_secret", false},
		{"Shared", true},
		{"Tight", false},
		{"Render", true},
		{"OnRender", true},
		{"Helper", false},
		{"Dispose", true},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.IncludeMember(findMember(t, widget, tt.member)))
		})
	}

	sealed := findType(t, asm, "Contoso.UI.SealedWidget")
	onRender := findMember(t, sealed, "OnRender")
	assert.False(t, metadata.IsMemberVisibleOutsideAssembly(onRender))
	assert.True(t, f.IncludeMember(onRender), "protected members survive on sealed types")

	plumbing := findType(t, asm, "Contoso.UI.Plumbing")
	assert.False(t, f.IncludeMember(findMember(t, plumbing, "Run")))

	marker := findType(t, asm, "System.Runtime.CompilerServices.NullableAttribute")
	assert.True(t, f.IncludeMember(findMember(t, marker, "NullableFlags")))

	assert.False(t, f.IncludeMember(nil))
}

func TestPublicOnlyFilter_MemberImpliesType(t *testing.T) {
	asm := loadSurface(t)
	filters := []Filter{
		DefaultPublicOnlyFilter(),
		NewPublicOnlyFilter(true, false),
		NewIncludeAllFilter(false),
	}

	for _, f := range filters {
		for _, ns := range asm.Namespaces {
			for _, typ := range ns.Types {
				for _, m := range typ.Members() {
					if f.IncludeMember(m) && !IsMarkerType(typ) {
						assert.True(t, f.IncludeType(typ), "%T kept %s without its type", f, m.DisplayName())
					}
				}
			}
		}
	}
}

func TestPublicOnlyFilter_Namespaces(t *testing.T) {
	asm := loadSurface(t)

	f := DefaultPublicOnlyFilter()
	for _, ns := range asm.Namespaces {
		anyIncluded := false
		for _, typ := range ns.Types {
			anyIncluded = anyIncluded || f.IncludeType(typ)
		}
		assert.Equal(t, anyIncluded, f.IncludeNamespace(ns), ns.Name)
	}

	internalNs := asm.Namespaces[2]
	assert.False(t, f.IncludeNamespace(internalNs))
	assert.True(t, NewPublicOnlyFilter(true, true).IncludeNamespace(internalNs),
		"a public forwarded type makes the namespace visible")
	assert.False(t, f.IncludeNamespace(nil))
}

func attribute(typ *metadata.TypeDefinition, args ...metadata.AttributeArgument) *metadata.CustomAttribute {
	return &metadata.CustomAttribute{
		Type:      &metadata.NamedType{Namespace: typ.Namespace, Name: typ.Name, Definition: typ},
		Arguments: args,
	}
}

func typeOf(typ *metadata.TypeDefinition) *metadata.TypeOfArgument {
	return &metadata.TypeOfArgument{Type: &metadata.NamedType{Namespace: typ.Namespace, Name: typ.Name, Definition: typ}}
}

func TestPublicOnlyFilter_Attributes(t *testing.T) {
	public := &metadata.TypeDefinition{Namespace: "Contoso", Name: "Visible", Visibility: metadata.VisibilityPublic}
	hidden := &metadata.TypeDefinition{Namespace: "Contoso", Name: "Hidden", Visibility: metadata.VisibilityAssembly}
	obsolete := &metadata.TypeDefinition{Namespace: "System", Name: "ObsoleteAttribute", Visibility: metadata.VisibilityPublic}
	internalAttr := &metadata.TypeDefinition{Namespace: "Contoso", Name: "InternalAttribute", Visibility: metadata.VisibilityAssembly}
	editor := &metadata.TypeDefinition{Namespace: "System.ComponentModel", Name: "EditorAttribute", Visibility: metadata.VisibilityPublic}
	debugger := &metadata.TypeDefinition{Namespace: "System.Diagnostics", Name: "DebuggerTypeProxyAttribute", Visibility: metadata.VisibilityPublic}
	nullable := &metadata.TypeDefinition{Namespace: "System.Runtime.CompilerServices", Name: "NullableAttribute", Visibility: metadata.VisibilityAssembly}

	keep := NewPublicOnlyFilter(false, false)
	exclude := DefaultPublicOnlyFilter()

	t.Run("marker attribute survives exclusion", func(t *testing.T) {
		assert.True(t, exclude.IncludeAttribute(attribute(nullable)))
	})
	t.Run("exclusion drops everything else", func(t *testing.T) {
		assert.False(t, exclude.IncludeAttribute(attribute(obsolete)))
	})
	t.Run("public attribute kept", func(t *testing.T) {
		assert.True(t, keep.IncludeAttribute(attribute(obsolete)))
	})
	t.Run("internal attribute type dropped", func(t *testing.T) {
		assert.False(t, keep.IncludeAttribute(attribute(internalAttr)))
	})
	t.Run("typeof visible type kept", func(t *testing.T) {
		assert.True(t, keep.IncludeAttribute(attribute(debugger, typeOf(public))))
	})
	t.Run("typeof hidden type dropped", func(t *testing.T) {
		assert.False(t, keep.IncludeAttribute(attribute(debugger, typeOf(hidden))))
	})
	t.Run("typeof hidden type kept on string-replaceable attribute", func(t *testing.T) {
		assert.True(t, keep.IncludeAttribute(attribute(editor, typeOf(hidden), typeOf(public))))
	})
	t.Run("typeof inside array argument", func(t *testing.T) {
		arr := &metadata.ArrayArgument{Elements: []metadata.AttributeArgument{typeOf(public), typeOf(hidden)}}
		assert.False(t, keep.IncludeAttribute(attribute(debugger, arr)))
	})
	t.Run("nil", func(t *testing.T) {
		assert.False(t, keep.IncludeAttribute(nil))
	})
}

func TestIncludeAllFilter(t *testing.T) {
	asm := loadSurface(t)
	f := NewIncludeAllFilter(false)

	plumbing := findType(t, asm, "Contoso.UI.Plumbing")
	assert.True(t, f.IncludeType(plumbing))
	assert.True(t, f.IncludeMember(findMember(t, plumbing, "Run")))

	widget := findType(t, asm, "Contoso.UI.Widget")
	assert.True(t, f.IncludeMember(findMember(t, widget, "Helper")))
	assert.False(t, f.IncludeMember(findMember(t, widget, "_secret")))
	assert.True(t, f.IncludeNamespace(asm.Namespaces[2]))
}

func TestExcludeListFilter(t *testing.T) {
	asm := loadSurface(t)
	ids, err := ParseExcludeList(strings.NewReader(`
# generated
T:Contoso.UI.SealedWidget
M:Contoso.UI.Widget.Render  not shipped yet
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"T:Contoso.UI.SealedWidget", "M:Contoso.UI.Widget.Render"}, ids)

	f := NewExcludeListFilter(DefaultPublicOnlyFilter(), ids)
	widget := findType(t, asm, "Contoso.UI.Widget")

	assert.False(t, f.IncludeType(findType(t, asm, "Contoso.UI.SealedWidget")))
	assert.True(t, f.IncludeType(widget))
	assert.False(t, f.IncludeMember(findMember(t, widget, "Render")))
	assert.True(t, f.IncludeMember(findMember(t, widget, "OnRender")))
	assert.True(t, f.IncludeNamespace(asm.Namespaces[1]))
	assert.False(t, f.IncludeForwardedTypes())
	assert.True(t, NewExcludeListFilter(NewPublicOnlyFilter(true, true), nil).IncludeForwardedTypes())
}

func TestIntersectionFilter(t *testing.T) {
	asm := loadSurface(t)
	widget := findType(t, asm, "Contoso.UI.Widget")

	f := IntersectionFilter{NewIncludeAllFilter(false), NewExcludeListFilter(NewIncludeAllFilter(false), []string{"F:Contoso.UI.Widget.Name"})}
	assert.True(t, f.IncludeMember(findMember(t, widget, "Helper")))
	assert.False(t, f.IncludeMember(findMember(t, widget, "Name")))
	assert.True(t, f.IncludeType(findType(t, asm, "Contoso.UI.Plumbing")))
}
