package models

// RefKind tags the variant held by a TypeRef.
type RefKind int

const (
	// Scalar is an inline type token such as "string" or "{}".
	Scalar RefKind = iota
	// Reference points at a named Declaration.
	Reference
	// EmptyArray is an array with no element to infer from.
	EmptyArray
	// Null is a JSON null; it renders as "{}" without a terminator outside arrays.
	Null
)

// TypeRef is the resolved type of a member.
type TypeRef struct {
	Kind RefKind
	// Name is the scalar token or the referenced declaration name.
	Name string
	// ArrayDepth counts enclosing arrays; for EmptyArray it includes the empty array itself.
	ArrayDepth int
}

// FieldInfo describes one member of a declaration.
type FieldInfo struct {
	Key         string
	Type        TypeRef
	Annotations []string
}

// Declaration is one emitted `export <kind> <Name> { ... }` block.
type Declaration struct {
	Name   string
	Fields []FieldInfo
	// Children are declarations first emitted while resolving this declaration's fields, in order.
	Children []*Declaration
	// Scalar is set when the document root is not an object.
	Scalar *TypeRef
}

// AnalysisResult holds the declaration tree produced for one document.
type AnalysisResult struct {
	Mode Mode
	Root *Declaration
}

// Count returns the number of declarations in the tree rooted at d.
func (d *Declaration) Count() int {
	if d == nil {
		return 0
	}
	n := 1
	for _, c := range d.Children {
		n += c.Count()
	}
	return n
}
