package metadata

// Document is the on-disk form of an assembly's metadata graph.
// Type references are written as CLR type expressions and resolved on load.
type Document struct {
	Assembly           string         `yaml:"assembly" json:"assembly"`
	Version            string         `yaml:"version,omitempty" json:"version,omitempty"`
	Attributes         []AttributeDoc `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	SecurityAttributes []SecurityDoc  `yaml:"security_attributes,omitempty" json:"security_attributes,omitempty"`
	References         []ReferenceDoc `yaml:"references,omitempty" json:"references,omitempty"`
	Namespaces         []NamespaceDoc `yaml:"namespaces" json:"namespaces"`
}

// ReferenceDoc describes a type defined in another assembly.
// Referenced types not listed are assumed to be public classes.
type ReferenceDoc struct {
	Type       string `yaml:"type" json:"type"`
	Assembly   string `yaml:"assembly,omitempty" json:"assembly,omitempty"`
	Kind       string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Visibility string `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Sealed     bool   `yaml:"sealed,omitempty" json:"sealed,omitempty"`
}

// SecurityDoc is an assembly-level declarative security record
type SecurityDoc struct {
	Action     string         `yaml:"action" json:"action"`
	Attributes []AttributeDoc `yaml:"attributes" json:"attributes"`
}

// NamespaceDoc lists the types of one namespace
type NamespaceDoc struct {
	Name      string       `yaml:"name" json:"name"`
	Types     []TypeDoc    `yaml:"types,omitempty" json:"types,omitempty"`
	Forwarded []ForwardDoc `yaml:"forwarded,omitempty" json:"forwarded,omitempty"`
}

// ForwardDoc records a forwarded type and the assembly now defining it
type ForwardDoc struct {
	Type       string `yaml:"type" json:"type"`
	Assembly   string `yaml:"assembly,omitempty" json:"assembly,omitempty"`
	Kind       string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Visibility string `yaml:"visibility,omitempty" json:"visibility,omitempty"`
}

// TypeDoc describes a type definition
type TypeDoc struct {
	Name              string                `yaml:"name" json:"name"`
	Kind              string                `yaml:"kind,omitempty" json:"kind,omitempty"`
	Visibility        string                `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Abstract          bool                  `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Sealed            bool                  `yaml:"sealed,omitempty" json:"sealed,omitempty"`
	Static            bool                  `yaml:"static,omitempty" json:"static,omitempty"`
	Serializable      bool                  `yaml:"serializable,omitempty" json:"serializable,omitempty"`
	GenericParameters []GenericParameterDoc `yaml:"generic_parameters,omitempty" json:"generic_parameters,omitempty"`
	BaseType          string                `yaml:"base,omitempty" json:"base,omitempty"`
	Interfaces        []string              `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	UnderlyingType    string                `yaml:"underlying_type,omitempty" json:"underlying_type,omitempty"`
	Attributes        []AttributeDoc        `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Fields            []FieldDoc            `yaml:"fields,omitempty" json:"fields,omitempty"`
	Methods           []MethodDoc           `yaml:"methods,omitempty" json:"methods,omitempty"`
	Properties        []PropertyDoc         `yaml:"properties,omitempty" json:"properties,omitempty"`
	Events            []EventDoc            `yaml:"events,omitempty" json:"events,omitempty"`
	NestedTypes       []TypeDoc             `yaml:"nested_types,omitempty" json:"nested_types,omitempty"`
}

// GenericParameterDoc describes a generic parameter and its constraints
type GenericParameterDoc struct {
	Name        string         `yaml:"name" json:"name"`
	Variance    string         `yaml:"variance,omitempty" json:"variance,omitempty"` // in, out
	Class       bool           `yaml:"class,omitempty" json:"class,omitempty"`
	Struct      bool           `yaml:"struct,omitempty" json:"struct,omitempty"`
	New         bool           `yaml:"new,omitempty" json:"new,omitempty"`
	Constraints []string       `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Attributes  []AttributeDoc `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// FieldDoc describes a field or enum member
type FieldDoc struct {
	Name          string         `yaml:"name" json:"name"`
	Type          string         `yaml:"type,omitempty" json:"type,omitempty"`
	Visibility    string         `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Static        bool           `yaml:"static,omitempty" json:"static,omitempty"`
	ReadOnly      bool           `yaml:"readonly,omitempty" json:"readonly,omitempty"`
	Const         bool           `yaml:"const,omitempty" json:"const,omitempty"`
	Value         any            `yaml:"value,omitempty" json:"value,omitempty"`
	NotSerialized bool           `yaml:"not_serialized,omitempty" json:"not_serialized,omitempty"`
	Modifiers     []ModifierDoc  `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
	Attributes    []AttributeDoc `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// ModifierDoc describes a custom modifier
type ModifierDoc struct {
	Type     string `yaml:"type" json:"type"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// MethodDoc describes a method or constructor
type MethodDoc struct {
	Name              string                `yaml:"name" json:"name"`
	Visibility        string                `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Static            bool                  `yaml:"static,omitempty" json:"static,omitempty"`
	Abstract          bool                  `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Virtual           bool                  `yaml:"virtual,omitempty" json:"virtual,omitempty"`
	Override          bool                  `yaml:"override,omitempty" json:"override,omitempty"`
	Sealed            bool                  `yaml:"sealed,omitempty" json:"sealed,omitempty"`
	Constructor       bool                  `yaml:"constructor,omitempty" json:"constructor,omitempty"`
	GenericParameters []GenericParameterDoc `yaml:"generic_parameters,omitempty" json:"generic_parameters,omitempty"`
	Parameters        []ParameterDoc        `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Returns           string                `yaml:"returns,omitempty" json:"returns,omitempty"`
	ReturnAttributes  []AttributeDoc        `yaml:"return_attributes,omitempty" json:"return_attributes,omitempty"`
	ReturnModifiers   []ModifierDoc         `yaml:"return_modifiers,omitempty" json:"return_modifiers,omitempty"`
	Attributes        []AttributeDoc        `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Implements        []ImplementsDoc       `yaml:"implements,omitempty" json:"implements,omitempty"`
}

// ImplementsDoc names an interface method implemented explicitly
type ImplementsDoc struct {
	Interface string `yaml:"interface" json:"interface"`
	Method    string `yaml:"method" json:"method"`
}

// ParameterDoc describes a parameter
type ParameterDoc struct {
	Name        string         `yaml:"name" json:"name"`
	Type        string         `yaml:"type" json:"type"`
	Out         bool           `yaml:"out,omitempty" json:"out,omitempty"`
	Ref         bool           `yaml:"ref,omitempty" json:"ref,omitempty"`
	Params      bool           `yaml:"params,omitempty" json:"params,omitempty"`
	Default     any            `yaml:"default,omitempty" json:"default,omitempty"`
	DefaultNull bool           `yaml:"default_null,omitempty" json:"default_null,omitempty"`
	Modifiers   []ModifierDoc  `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
	Attributes  []AttributeDoc `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// AccessorDoc describes a property or event accessor
type AccessorDoc struct {
	Visibility string          `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Static     bool            `yaml:"static,omitempty" json:"static,omitempty"`
	Abstract   bool            `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Virtual    bool            `yaml:"virtual,omitempty" json:"virtual,omitempty"`
	Override   bool            `yaml:"override,omitempty" json:"override,omitempty"`
	Sealed     bool            `yaml:"sealed,omitempty" json:"sealed,omitempty"`
	Implements []ImplementsDoc `yaml:"implements,omitempty" json:"implements,omitempty"`
}

// PropertyDoc describes a property or indexer
type PropertyDoc struct {
	Name       string         `yaml:"name" json:"name"`
	Type       string         `yaml:"type" json:"type"`
	Get        *AccessorDoc   `yaml:"get,omitempty" json:"get,omitempty"`
	Set        *AccessorDoc   `yaml:"set,omitempty" json:"set,omitempty"`
	Parameters []ParameterDoc `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Attributes []AttributeDoc `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// EventDoc describes an event; both accessors share the given flags
type EventDoc struct {
	Name        string         `yaml:"name" json:"name"`
	Type        string         `yaml:"type" json:"type"`
	AccessorDoc `yaml:",inline" json:",inline"`
	Attributes  []AttributeDoc `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// AttributeDoc describes a custom attribute application
type AttributeDoc struct {
	Type  string             `yaml:"type" json:"type"`
	Args  []ArgumentDoc      `yaml:"args,omitempty" json:"args,omitempty"`
	Named []NamedArgumentDoc `yaml:"named,omitempty" json:"named,omitempty"`
}

// ArgumentDoc is one attribute argument. Exactly one of Value, TypeOf or
// Array is meaningful; Type declares the constant or element type.
type ArgumentDoc struct {
	Type   string        `yaml:"type,omitempty" json:"type,omitempty"`
	Value  any           `yaml:"value,omitempty" json:"value,omitempty"`
	TypeOf string        `yaml:"typeof,omitempty" json:"typeof,omitempty"`
	Array  []ArgumentDoc `yaml:"array,omitempty" json:"array,omitempty"`
	Null   bool          `yaml:"null,omitempty" json:"null,omitempty"`
}

// NamedArgumentDoc is a property or field assignment
type NamedArgumentDoc struct {
	Name  string      `yaml:"name" json:"name"`
	Field bool        `yaml:"field,omitempty" json:"field,omitempty"`
	Value ArgumentDoc `yaml:"value" json:"value"`
}
