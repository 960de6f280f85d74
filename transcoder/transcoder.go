// Package transcoder converts JSON documents into TypeScript declarations:
// plain interfaces, or NestJS DTO classes annotated for class-validator.
//
// Nested objects become their own declarations, named after the field that
// holds them. Objects with an identical set of keys share one declaration.
//
//	res := transcoder.Convert(`{"items": [{"id": 1}]}`, transcoder.ModeDTO)
//	if res.Error != "" {
//		// handle error
//	}
//	fmt.Print(res.Content)
package transcoder

import (
	"go.uber.org/zap"

	"github.com/mcncl/json2nest/internal/analyzer"
	"github.com/mcncl/json2nest/internal/config"
	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/formatter"
	"github.com/mcncl/json2nest/internal/generator"
	"github.com/mcncl/json2nest/internal/logger"
	"github.com/mcncl/json2nest/internal/models"
	"github.com/mcncl/json2nest/internal/parser"
)

// Mode selects the kind of declarations generated.
type Mode = models.Mode

const (
	// ModeInterface emits `export interface` declarations.
	ModeInterface = models.ModeInterface
	// ModeDTO emits `export class` declarations with validation annotations.
	ModeDTO = models.ModeDTO
)

// ParseMode maps a mode name to a Mode. Anything other than "interface" is dto.
func ParseMode(s string) Mode {
	return models.ParseMode(s)
}

// Result is the outcome of one conversion. Exactly one of Content and Error
// is meaningful: Content is empty whenever Error is set.
type Result struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Config is the file-backed configuration shared with the CLI.
type Config = config.Config

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// LoadConfig reads and validates a YAML or TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), errors.ErrInvalidConfig)
	}
	return cfg, nil
}

// Options configures a Transcoder. Zero values fall back to Config, then to
// the built-in defaults. New takes its own copy of Config.
type Options struct {
	Mode     Mode
	RootName string
	Config   *config.Config
	Logger   *zap.SugaredLogger
}

// Transcoder converts JSON text using a fixed set of options.
// It holds no per-call state and is safe for concurrent use.
type Transcoder struct {
	mode   Mode
	config *config.Config
	logger *zap.SugaredLogger
}

// New creates a Transcoder.
func New(opts Options) *Transcoder {
	cfg := config.NewConfig()
	if opts.Config != nil {
		cfg = opts.Config.Clone()
	}
	if opts.RootName != "" {
		cfg.RootName = opts.RootName
	}

	mode := opts.Mode
	if mode == "" {
		mode = models.ParseMode(cfg.Mode)
	}

	return &Transcoder{
		mode:   mode,
		config: cfg,
		logger: logger.OrNop(opts.Logger),
	}
}

// Mode returns the mode declarations are generated in.
func (t *Transcoder) Mode() Mode {
	return t.mode
}

// Convert parses jsonText and renders it. The returned error is an
// *errors.AppError; its Message is what Result.Error carries.
func (t *Transcoder) Convert(jsonText string) (string, error) {
	ir, err := parser.ParseString(jsonText)
	if err != nil {
		return "", err
	}
	if ir.RootIsArray {
		return "", errors.NewTopLevelArrayError()
	}

	result, err := analyzer.NewAnalyzerWithConfig(t.mode, t.config, t.logger).Analyze(ir)
	if err != nil {
		return "", err
	}

	code, err := generator.NewGenerator().Generate(result)
	if err != nil {
		return "", err
	}

	code, err = formatter.NewFormatterWithConfig(t.config.Formatting).Format(code)
	if err != nil {
		return "", err
	}

	t.logger.Debugw("converted document",
		"mode", t.mode,
		"input_bytes", len(jsonText),
		"output_bytes", len(code),
	)
	return code, nil
}

// ConvertResult is Convert with the error folded into a Result.
func (t *Transcoder) ConvertResult(jsonText string) Result {
	content, err := t.Convert(jsonText)
	if err != nil {
		return Result{Error: errors.Message(err)}
	}
	return Result{Content: content}
}

// Convert converts jsonText with the default configuration.
func Convert(jsonText string, mode Mode) Result {
	return New(Options{Mode: mode}).ConvertResult(jsonText)
}
