package formatter

import (
	"regexp"
	"strings"

	"github.com/mcncl/json2nest/internal/config"
	"github.com/mcncl/json2nest/internal/errors"
)

// leadingUnits matches the two-space indentation written by the generator.
var leadingUnits = regexp.MustCompile(`(?m)^((?:  )+)`)

// Formatter post-processes rendered declarations for CLI and server output
type Formatter struct {
	indent       string
	finalNewline bool
}

// NewFormatter creates a new Formatter that leaves generator output unchanged
func NewFormatter() *Formatter {
	return &Formatter{indent: config.DefaultIndent}
}

// NewFormatterWithConfig creates a Formatter from the formatting section of the config
func NewFormatterWithConfig(cfg config.FormattingConfig) *Formatter {
	f := NewFormatter()
	if cfg.Indent != "" {
		f.indent = cfg.Indent
	}
	f.finalNewline = cfg.FinalNewline
	return f
}

// Format re-indents member lines and optionally terminates the text with a newline
func (f *Formatter) Format(code string) (string, error) {
	// Handle empty input
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	if strings.TrimLeft(f.indent, " \t") != "" {
		return "", errors.NewFormatError("indent must contain only spaces or tabs", errors.ErrInvalidConfig)
	}

	result := code
	if f.indent != config.DefaultIndent {
		result = f.reindent(result)
	}

	if f.finalNewline && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}

	return result, nil
}

func (f *Formatter) reindent(code string) string {
	return leadingUnits.ReplaceAllStringFunc(code, func(prefix string) string {
		return strings.Repeat(f.indent, len(prefix)/len(config.DefaultIndent))
	})
}
