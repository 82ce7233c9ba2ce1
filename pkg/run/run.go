// Package run executes the external tools that do the actual transfer and
// extraction work (curl, tar, unzip, git, svn, cvs, hg). Commands either
// stream their output or run quietly; a nonzero exit is always fatal to the
// calling operation.
package run

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner runs external commands and narrates progress. The zero value is not
// usable; construct with New.
type Runner struct {
	verbose bool
	out     io.Writer
	errOut  io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput redirects narration and streamed command output, primarily for
// tests.
func WithOutput(out, errOut io.Writer) Option {
	return func(r *Runner) {
		r.out = out
		r.errOut = errOut
	}
}

func New(verbose bool, opts ...Option) *Runner {
	r := &Runner{
		verbose: verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Verbose reports whether verbose mode is enabled.
func (r *Runner) Verbose() bool {
	return r.verbose
}

// Status prints a single progress line (e.g. "Downloading ...").
// This is user-facing narration, not an error channel.
func (r *Runner) Status(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Run executes the command in dir (the current directory when dir is empty),
// streaming its output. Used where tool progress should always be visible,
// such as a first-time clone or a curl download.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.out
	cmd.Stderr = r.errOut
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// RunQuiet executes the command with a trailing "-q" flag and its output
// discarded. In verbose mode the flag is dropped and output streams as with
// Run.
func (r *Runner) RunQuiet(ctx context.Context, dir, name string, args ...string) error {
	if r.verbose {
		return r.Run(ctx, dir, name, args...)
	}

	args = append(append([]string{}, args...), "-q")
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
