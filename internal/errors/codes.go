package errors

// Metadata document error codes (LOAD100-199)
const (
	// ErrReadDocument indicates the document could not be read
	ErrReadDocument Code = "LOAD100"
	// ErrDecodeDocument indicates the document is not valid YAML or JSON
	ErrDecodeDocument Code = "LOAD101"
	// ErrInvalidTypeExpression indicates an unparseable type expression
	ErrInvalidTypeExpression Code = "LOAD102"
	// ErrDuplicateType indicates a type declared twice
	ErrDuplicateType Code = "LOAD103"
	// ErrInvalidVisibility indicates an unknown visibility spelling
	ErrInvalidVisibility Code = "LOAD104"
	// ErrInvalidTypeKind indicates an unknown type kind
	ErrInvalidTypeKind Code = "LOAD105"
	// ErrInvalidConstant indicates a constant that does not fit its declared type
	ErrInvalidConstant Code = "LOAD106"
	// ErrMissingName indicates a nameless declaration
	ErrMissingName Code = "LOAD107"
)

// Declaration writer codes (GEN600-699)
const (
	// ErrNilSink indicates a writer constructed without a textual sink
	ErrNilSink Code = "GEN610"
	// ErrUnknownDefinition indicates a definition variant the writer does not model
	ErrUnknownDefinition Code = "GEN611"
	// ErrMalformedDynamic indicates a dynamic marker that does not match its type
	ErrMalformedDynamic Code = "GEN612"
	// ErrSinkWrite indicates the sink failed to write output
	ErrSinkWrite Code = "GEN613"
)

// Configuration codes (CFG700-799)
const (
	// ErrReadConfig indicates the config file could not be read
	ErrReadConfig Code = "CFG700"
	// ErrInvalidConfig indicates an invalid configuration value
	ErrInvalidConfig Code = "CFG701"
	// ErrMissingInput indicates no metadata document was given
	ErrMissingInput Code = "CFG702"
)

// NewReadDocument creates a LOAD100 error
func NewReadDocument(file string, cause error) *Diagnostic {
	return newDiagnosticf(ErrReadDocument, "read_document", CategoryLoad, SeverityError,
		"Cannot read metadata document: %v", cause).
		WithFile(file).
		WithCause(cause)
}

// NewDecodeDocument creates a LOAD101 error
func NewDecodeDocument(file string, cause error) *Diagnostic {
	return newDiagnosticf(ErrDecodeDocument, "decode_document", CategoryLoad, SeverityError,
		"Metadata document is malformed: %v", cause).
		WithFile(file).
		WithCause(cause).
		WithSuggestion("Documents must be YAML (.yaml, .yml) or JSON (.json, .json.gz)")
}

// NewInvalidTypeExpression creates a LOAD102 error
func NewInvalidTypeExpression(definition, expr string, cause error) *Diagnostic {
	return newDiagnosticf(ErrInvalidTypeExpression, "invalid_type_expression", CategoryLoad, SeverityError,
		"Invalid type expression '%s': %v", expr, cause).
		WithDefinition(definition).
		WithCause(cause).
		WithSuggestion("Use CLR syntax such as Ns.List<Ns.Item>, Outer+Inner, T[] or T*")
}

// NewDuplicateType creates a LOAD103 error
func NewDuplicateType(name string) *Diagnostic {
	return newDiagnosticf(ErrDuplicateType, "duplicate_type", CategoryLoad, SeverityError,
		"Type '%s' is declared more than once", name).
		WithDefinition(name)
}

// NewInvalidVisibility creates a LOAD104 error
func NewInvalidVisibility(definition, value string) *Diagnostic {
	return newDiagnosticf(ErrInvalidVisibility, "invalid_visibility", CategoryLoad, SeverityError,
		"Unknown visibility '%s'", value).
		WithDefinition(definition).
		WithSuggestion("Use public, private, assembly, family, family_or_assembly or family_and_assembly")
}

// NewInvalidTypeKind creates a LOAD105 error
func NewInvalidTypeKind(definition, value string) *Diagnostic {
	return newDiagnosticf(ErrInvalidTypeKind, "invalid_type_kind", CategoryLoad, SeverityError,
		"Unknown type kind '%s'", value).
		WithDefinition(definition).
		WithSuggestion("Use class, struct, interface, enum or delegate")
}

// NewInvalidConstant creates a LOAD106 error
func NewInvalidConstant(definition string, value any, typ string) *Diagnostic {
	return newDiagnosticf(ErrInvalidConstant, "invalid_constant", CategoryLoad, SeverityError,
		"Constant %v is not a valid %s", value, typ).
		WithDefinition(definition)
}

// NewMissingName creates a LOAD107 error
func NewMissingName(kind, parent string) *Diagnostic {
	return newDiagnosticf(ErrMissingName, "missing_name", CategoryLoad, SeverityError,
		"A %s in '%s' has no name", kind, parent).
		WithDefinition(parent)
}

// NewNilSink creates a GEN610 error
func NewNilSink() *Diagnostic {
	return newDiagnostic(ErrNilSink, "nil_sink", CategoryCodeGen, SeverityError,
		"Declaration writer requires a non-nil syntax writer")
}

// NewUnknownDefinition creates a GEN611 warning
func NewUnknownDefinition(kind string) *Diagnostic {
	return newDiagnosticf(ErrUnknownDefinition, "unknown_definition", CategoryCodeGen, SeverityWarning,
		"Unknown definition type %s", kind).
		WithSuggestion("The declaration was replaced by a placeholder comment")
}

// NewMalformedDynamic creates a GEN612 warning
func NewMalformedDynamic(definition, reason string) *Diagnostic {
	return newDiagnosticf(ErrMalformedDynamic, "malformed_dynamic", CategoryCodeGen, SeverityWarning,
		"Ignoring dynamic marker: %s", reason).
		WithDefinition(definition).
		WithSuggestion("The literal type was written instead of dynamic")
}

// NewSinkWrite creates a GEN613 error
func NewSinkWrite(file string, cause error) *Diagnostic {
	return newDiagnosticf(ErrSinkWrite, "sink_write", CategoryCodeGen, SeverityError,
		"Failed to write declarations: %v", cause).
		WithFile(file).
		WithCause(cause)
}

// NewReadConfig creates a CFG700 error
func NewReadConfig(file string, cause error) *Diagnostic {
	return newDiagnosticf(ErrReadConfig, "read_config", CategoryConfig, SeverityError,
		"Failed to read config file: %v", cause).
		WithFile(file).
		WithCause(cause)
}

// NewInvalidConfig creates a CFG701 error
func NewInvalidConfig(key, reason string) *Diagnostic {
	return newDiagnosticf(ErrInvalidConfig, "invalid_config", CategoryConfig, SeverityError,
		"%s %s", key, reason)
}

// NewMissingInput creates a CFG702 error
func NewMissingInput() *Diagnostic {
	return newDiagnostic(ErrMissingInput, "missing_input", CategoryConfig, SeverityError,
		"No metadata document given").
		WithSuggestion("Pass --input or set input in genapi.yml")
}
