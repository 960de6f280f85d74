package generator

import (
	"fmt"
	"strings"

	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/models"
)

// indentUnit prefixes every member line, whatever the nesting depth.
const indentUnit = "  "

// Generator renders declaration trees as TypeScript source
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the root declaration followed by every nested declaration.
// Nested declarations are written children-first, each preceded by a blank line.
func (g *Generator) Generate(result models.AnalysisResult) (string, error) {
	if result.Root == nil {
		return "", errors.NewGenerateError("analysis result has no root declaration", nil)
	}

	var buf strings.Builder
	root := result.Root
	header := fmt.Sprintf("export %s %s", result.Mode.Keyword(), root.Name)

	// A scalar document has no body: its type follows the header directly.
	if root.Scalar != nil {
		buf.WriteString(header)
		buf.WriteString(TypeString(*root.Scalar))
		return buf.String(), nil
	}

	g.writeDeclaration(&buf, header, root.Fields, result.Mode)
	for _, child := range root.Children {
		g.writeNested(&buf, child, result.Mode)
	}

	return buf.String(), nil
}

func (g *Generator) writeNested(buf *strings.Builder, decl *models.Declaration, mode models.Mode) {
	for _, child := range decl.Children {
		g.writeNested(buf, child, mode)
	}
	buf.WriteString("\n")
	g.writeDeclaration(buf, fmt.Sprintf("export %s %s", mode.Keyword(), decl.Name), decl.Fields, mode)
}

func (g *Generator) writeDeclaration(buf *strings.Builder, header string, fields []models.FieldInfo, mode models.Mode) {
	buf.WriteString(header)
	buf.WriteString(" {\n")

	for i, field := range fields {
		for _, annotation := range field.Annotations {
			buf.WriteString(indentUnit)
			buf.WriteString(annotation)
			buf.WriteString("\n")
		}
		buf.WriteString(indentUnit)
		buf.WriteString(field.Key)
		buf.WriteString(": ")
		buf.WriteString(TypeString(field.Type))

		// dto members are separated by a blank line
		if mode.IsDTO() && i < len(fields)-1 {
			buf.WriteString("\n\n")
		} else {
			buf.WriteString("\n")
		}
	}

	buf.WriteString("}\n")
}

// TypeString converts a TypeRef to the text written after "key: ".
func TypeString(ref models.TypeRef) string {
	suffix := strings.Repeat("[]", ref.ArrayDepth)
	switch ref.Kind {
	case models.EmptyArray:
		return suffix + ";"
	case models.Null:
		// a bare null carries no terminator
		if ref.ArrayDepth == 0 {
			return "{}"
		}
		return "{}" + suffix + ";"
	default:
		return ref.Name + suffix + ";"
	}
}
