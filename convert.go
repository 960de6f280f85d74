package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/models"
	"github.com/mcncl/json2nest/internal/parser"
	"github.com/mcncl/json2nest/internal/watch"
	"github.com/mcncl/json2nest/transcoder"
)

// chunkSize bounds a single read in streamed mode.
const chunkSize = 64 * 1024

// ConvertCmd converts JSON from a file or stdin
type ConvertCmd struct {
	Mode        string `help:"Declaration kind: interface or dto. Anything other than interface is dto." short:"m"`
	Big         bool   `help:"Read stdin to EOF and convert it as one document, instead of converting each chunk as it arrives." short:"b"`
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	RootName    string `help:"Name for the root declaration." short:"r" name:"root-name"`
	Watch       bool   `help:"Regenerate the output whenever the input file changes. Requires --input and --output." short:"w"`
	Interactive bool   `help:"Paste JSON into the terminal and press Ctrl+D to convert." short:"I"`
}

// Run executes the conversion
func (c *ConvertCmd) Run(g *Globals) error {
	mode := c.Mode
	if mode != "" {
		mode = string(models.ParseMode(mode))
	}
	cfg, log, err := g.setup(mode, c.RootName)
	if err != nil {
		return err
	}

	tc := transcoder.New(transcoder.Options{Config: cfg, Logger: log})
	log.Debugw("starting conversion", "mode", tc.Mode(), "input", c.Input, "output", c.Output)

	if c.Watch {
		if c.Input == "" || c.Output == "" {
			return errors.NewInputError("watch mode needs both --input and --output", errors.ErrInvalidFilePath)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch.New(c.Input, c.Output, tc.Convert, log).Run(ctx)
	}

	if c.Input != "" {
		data, err := parser.ReadFile(c.Input)
		if err != nil {
			return err
		}
		return c.convertAndWrite(g, tc, string(data))
	}

	if isTerminal(g.Stdin) {
		if !c.Interactive {
			return errors.NewInputError("no input provided", errors.ErrNoInput)
		}
		data, err := readInteractive(g)
		if err != nil {
			return err
		}
		return c.convertAndWrite(g, tc, data)
	}

	// A file target needs one document, so it always buffers.
	if c.Big || c.Output != "" {
		data, err := io.ReadAll(g.Stdin)
		if err != nil {
			return errors.NewInputError("failed to read from stdin", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
		}
		return c.convertAndWrite(g, tc, string(data))
	}

	return c.stream(g, tc)
}

// stream converts every chunk read from stdin as its own document. A chunk
// that fails is reported and skipped; the first failure is returned at EOF.
func (c *ConvertCmd) stream(g *Globals, tc *transcoder.Transcoder) error {
	var firstErr error
	buf := make([]byte, chunkSize)
	for {
		n, readErr := g.Stdin.Read(buf)
		if n > 0 {
			content, err := tc.Convert(string(buf[:n]))
			if err != nil {
				fmt.Fprintf(g.Stderr, "%s\n", errors.UserFriendlyError(err))
				if firstErr == nil {
					firstErr = err
				}
			} else if _, err := fmt.Fprintln(g.Stdout, content); err != nil {
				return errors.NewOutputError("failed to write to stdout", err)
			}
		}
		if readErr == io.EOF {
			return firstErr
		}
		if readErr != nil {
			return errors.NewInputError("failed to read from stdin", readErr)
		}
	}
}

func (c *ConvertCmd) convertAndWrite(g *Globals, tc *transcoder.Transcoder, data string) error {
	content, err := tc.Convert(data)
	if err != nil {
		return err
	}
	return writeOutput(g, c.Output, content)
}

// writeOutput writes declarations to a file or stdout
func writeOutput(g *Globals, path, content string) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(g.Stderr, "Declarations written to %s\n", path)
		return nil
	}

	if _, err := fmt.Fprintln(g.Stdout, content); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// readInteractive reads pasted JSON until EOF (Ctrl+D)
func readInteractive(g *Globals) (string, error) {
	fmt.Fprintln(g.Stderr, "json2nest interactive mode")
	fmt.Fprintln(g.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	data, err := io.ReadAll(g.Stdin)
	if err != nil {
		return "", errors.NewInputError("error reading input", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(g.Stderr, "\nProcessing JSON...")
	return string(data), nil
}
