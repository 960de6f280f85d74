package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultMode      = "interface"
	DefaultRootName  = "Parent"
	DefaultDTOSuffix = "Dto"
	DefaultIndent    = "  "
	DefaultAddr      = "127.0.0.1:8080"

	NamingSegments = "segments"
	NamingCamel    = "camel"
)

var validate = validator.New()

// Config represents the complete configuration for json2nest
type Config struct {
	Mode       string           `yaml:"mode" toml:"mode" validate:"oneof=interface dto"`
	RootName   string           `yaml:"root_name" toml:"root_name" validate:"required"`
	Naming     NamingConfig     `yaml:"naming" toml:"naming"`
	Formatting FormattingConfig `yaml:"formatting" toml:"formatting"`
	Validation ValidationConfig `yaml:"validation" toml:"validation"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Dev        DevConfig        `yaml:"dev" toml:"dev"`
}

// NamingConfig controls declaration naming
type NamingConfig struct {
	// Style is "segments" (split on '_' and capitalize each part) or "camel" (strcase).
	Style     string `yaml:"style" toml:"style" validate:"oneof=segments camel"`
	DTOSuffix string `yaml:"dto_suffix" toml:"dto_suffix"`
}

// FormattingConfig controls post-processing of the rendered output
type FormattingConfig struct {
	Indent       string `yaml:"indent" toml:"indent" validate:"required"`
	FinalNewline bool   `yaml:"final_newline" toml:"final_newline"`
}

// ValidationConfig holds extra DTO annotation rules
type ValidationConfig struct {
	Rules []ValidationRule `yaml:"rules" toml:"rules" validate:"dive"`
}

// ValidationRule adds an annotation line to DTO members whose name matches Pattern
type ValidationRule struct {
	Pattern    string `yaml:"pattern" toml:"pattern" validate:"required"`
	Annotation string `yaml:"annotation" toml:"annotation" validate:"required,startswith=@"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// ServerConfig controls the HTTP service
type ServerConfig struct {
	Addr      string  `yaml:"addr" toml:"addr" validate:"required"`
	RateLimit float64 `yaml:"rate_limit" toml:"rate_limit" validate:"gte=0"`
	Burst     int     `yaml:"burst" toml:"burst" validate:"gte=0"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug    bool `yaml:"debug" toml:"debug"`
	JSONLogs bool `yaml:"json_logs" toml:"json_logs"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Mode:     DefaultMode,
		RootName: DefaultRootName,
		Naming: NamingConfig{
			Style:     NamingSegments,
			DTOSuffix: DefaultDTOSuffix,
		},
		Formatting: FormattingConfig{
			Indent:       DefaultIndent,
			FinalNewline: false,
		},
		Validation: ValidationConfig{
			Rules: []ValidationRule{},
		},
		Server: ServerConfig{
			Addr:      DefaultAddr,
			RateLimit: 20,
			Burst:     40,
		},
	}
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by extension
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return FindConfigFileFrom(currentDir)
}

// FindConfigFileFrom searches dir and its parents for a config file
func FindConfigFileFrom(dir string) string {
	configNames := []string{".json2nest.yml", ".json2nest.yaml", ".json2nest.toml", "json2nest.yml", "json2nest.yaml", "json2nest.toml"}

	currentDir := dir
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks field constraints and compiles rule patterns
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.compilePatterns(); err != nil {
		return fmt.Errorf("failed to compile patterns: %w", err)
	}
	return nil
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Validation.Rules {
		rule := &c.Validation.Rules[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid validation rule pattern '%s': %w", rule.Pattern, err)
		}
		rule.regex = regex
	}
	return nil
}

// MatchesField checks if this validation rule matches the given field name.
// It never mutates the rule, so a config can be shared between goroutines.
func (vr *ValidationRule) MatchesField(fieldName string) bool {
	regex := vr.regex
	if regex == nil {
		compiled, err := regexp.Compile(vr.Pattern)
		if err != nil {
			return false
		}
		regex = compiled
	}
	return regex.MatchString(fieldName)
}

// Clone returns a copy that shares nothing mutable with c. Valid rule
// patterns are compiled on the copy; invalid ones never match.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Validation.Rules = make([]ValidationRule, len(c.Validation.Rules))
	for i, rule := range c.Validation.Rules {
		if rule.regex == nil {
			rule.regex, _ = regexp.Compile(rule.Pattern)
		}
		clone.Validation.Rules[i] = rule
	}
	return &clone
}

// ExtraAnnotations returns the annotations of every rule matching the field name, in rule order
func (c *Config) ExtraAnnotations(fieldName string) []string {
	var out []string
	for i := range c.Validation.Rules {
		rule := &c.Validation.Rules[i]
		if rule.MatchesField(fieldName) {
			out = append(out, rule.Annotation)
		}
	}
	return out
}

// DeclarationName derives the base declaration name for a JSON field name.
// The segments style splits on '_' and capitalizes the first rune of each part.
func (c *Config) DeclarationName(field string) string {
	if c.Naming.Style == NamingCamel {
		return strcase.ToCamel(field)
	}
	parts := strings.Split(field, "_")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, "")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// MergeCLI applies command-line overrides; empty values leave the config untouched
func (c *Config) MergeCLI(mode, rootName string) {
	if mode != "" {
		c.Mode = mode
	}
	if rootName != "" {
		c.RootName = rootName
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence.
// An empty configPath falls back to FindConfigFile.
func LoadConfigWithCLI(configPath, cliMode, cliRootName string) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.MergeCLI(cliMode, cliRootName)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
