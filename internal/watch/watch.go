// Package watch regenerates an output file whenever its JSON input changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/logger"
	"github.com/mcncl/json2nest/internal/parser"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// ConvertFunc turns JSON text into declarations.
type ConvertFunc func(jsonText string) (string, error)

// Watcher rebuilds Output from Input
type Watcher struct {
	input    string
	output   string
	convert  ConvertFunc
	logger   *zap.SugaredLogger
	debounce time.Duration
}

// New creates a Watcher. A nil logger disables logging.
func New(input, output string, convert ConvertFunc, log *zap.SugaredLogger) *Watcher {
	return &Watcher{
		input:    input,
		output:   output,
		convert:  convert,
		logger:   logger.OrNop(log),
		debounce: DefaultDebounce,
	}
}

// WithDebounce overrides the quiet period before a regeneration.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Regenerate converts the input once and writes the output file.
// On failure the previous output is left in place.
func (w *Watcher) Regenerate() error {
	data, err := parser.ReadFile(w.input)
	if err != nil {
		return err
	}
	content, err := w.convert(string(data))
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.output, []byte(content), 0o644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", w.output), err)
	}
	return nil
}

// Run regenerates once, then again after every change to the input file,
// until ctx is cancelled. Regenerations run one at a time on the calling
// goroutine; conversion errors are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	input, err := filepath.Abs(w.input)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid input path '%s'", w.input), errors.ErrInvalidFilePath)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewInputError("failed to create file watcher", err)
	}
	defer fsw.Close()

	// Editors often replace the file instead of writing it, so watch the directory.
	if err := fsw.Add(filepath.Dir(input)); err != nil {
		return errors.NewInputError(fmt.Sprintf("failed to watch '%s'", w.input), err)
	}

	w.regenerate()
	w.logger.Infow("watching for changes", "input", w.input, "output", w.output)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debugw("input changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.regenerate()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("watcher error", "error", err)
		}
	}
}

func (w *Watcher) regenerate() {
	start := time.Now()
	if err := w.Regenerate(); err != nil {
		w.logger.Warnw("regeneration failed", "error", errors.UserFriendlyError(err))
		return
	}
	w.logger.Infow("regenerated", "output", w.output, "duration", time.Since(start))
}
