package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/mcncl/json2nest/internal/config"
	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/logger"
)

// Version information
const (
	Version = "0.1.0"
)

// Globals are the flags shared by every command
type Globals struct {
	Config   string `help:"Path to a YAML or TOML config file. Defaults to the nearest .json2nest.{yml,yaml,toml}." short:"c" type:"path"`
	Debug    bool   `help:"Enable debug logging." short:"d"`
	JSONLogs bool   `help:"Write logs as JSON." name:"json-logs"`

	Stdin  io.Reader `kong:"-"`
	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Convert JSON into TypeScript interfaces or NestJS DTO classes (default)."`
	Serve   ServeCmd   `cmd:"" help:"Serve conversions over HTTP."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// VersionCmd prints the version
type VersionCmd struct{}

// Run prints the version
func (v *VersionCmd) Run(g *Globals) error {
	_, err := fmt.Fprintf(g.Stdout, "json2nest version %s\n", Version)
	return err
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("json2nest"),
		kong.Description("A tool to convert JSON into NestJS interfaces and DTO classes"),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

// setup loads the configuration with command-line precedence and starts the logger.
func (g *Globals) setup(mode, rootName string) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.LoadConfigWithCLI(g.Config, mode, rootName)
	if err != nil {
		return nil, nil, errors.NewConfigError(err.Error(), errors.ErrInvalidConfig)
	}
	if err := logger.Initialize(g.JSONLogs || cfg.Dev.JSONLogs, g.Debug || cfg.Dev.Debug); err != nil {
		return nil, nil, errors.NewConfigError("failed to initialize logger", err)
	}
	return cfg, logger.Logger, nil
}

func main() {
	cli := CLI{Globals: Globals{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}}

	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	// Parse the command line arguments
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	// With no arguments at all, a terminal user gets the paste prompt
	if len(os.Args) == 1 {
		cli.Convert.Interactive = true
	}

	err = ctx.Run(&cli.Globals)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: json2nest --help\n")
		os.Exit(1)
	}
}
