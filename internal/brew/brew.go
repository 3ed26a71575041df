// Package brew wraps the Homebrew command-line tool behind a small
// collaborator interface so the relocation flow can be tested without
// a real brew installation.
package brew

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kegadopt/kegadopt/internal/exec"
)

// Client is the subset of Homebrew operations kegadopt depends on.
type Client interface {
	// Prefix returns brew's configured binary prefix (e.g. /usr/local).
	Prefix(ctx context.Context) (string, error)

	// Cellar returns brew's keg storage root (e.g. /usr/local/Cellar).
	Cellar(ctx context.Context) (string, error)

	// Version returns the installed Homebrew version string.
	Version(ctx context.Context) (string, error)

	// IsInstalled reports whether a keg with the given name exists.
	IsInstalled(ctx context.Context, name string) (bool, error)

	// Uninstall removes the named keg. Idempotent from the caller's view:
	// "not installed" failures surface as CommandError and callers decide
	// whether to tolerate them.
	Uninstall(ctx context.Context, name string) error

	// Link links the named keg into the binary prefix.
	Link(ctx context.Context, name string) error
}

// CommandError is returned when a brew invocation fails.
type CommandError struct {
	Op     string
	Stderr string
	Err    error
}

// Error returns the error message.
func (e *CommandError) Error() string {
	msg := "brew " + e.Op + " failed"
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}

	return msg
}

// Unwrap returns the underlying execution error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// client shells out to the brew binary via a CommandRunner.
type client struct {
	runner exec.CommandRunner
}

// NewClient creates a brew client backed by the given runner.
func NewClient(runner exec.CommandRunner) Client {
	return &client{runner: runner}
}

// Prefix returns the output of "brew --prefix".
func (c *client) Prefix(ctx context.Context) (string, error) {
	return c.captureLine(ctx, "--prefix")
}

// Cellar returns the output of "brew --cellar".
func (c *client) Cellar(ctx context.Context) (string, error) {
	return c.captureLine(ctx, "--cellar")
}

// Version parses the version token out of "brew --version".
// The first output line has the form "Homebrew 4.2.17".
func (c *client) Version(ctx context.Context) (string, error) {
	out, err := c.captureLine(ctx, "--version")
	if err != nil {
		return "", err
	}

	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "Homebrew" {
		return "", errors.Newf("unexpected brew --version output: %q", out)
	}

	return fields[1], nil
}

// IsInstalled checks for the keg via "brew list --versions".
// brew exits non-zero for unknown kegs, which is a negative answer,
// not an error.
func (c *client) IsInstalled(ctx context.Context, name string) (bool, error) {
	result := c.runner.Run(ctx, "brew", "list", "--versions", name)
	if result.ExitCode == -1 {
		return false, &CommandError{Op: "list", Stderr: result.Stderr, Err: result.Err}
	}

	return result.Success() && strings.TrimSpace(result.Stdout) != "", nil
}

// Uninstall runs "brew uninstall --force".
func (c *client) Uninstall(ctx context.Context, name string) error {
	result := c.runner.Run(ctx, "brew", "uninstall", "--force", name)
	if result.Failed() {
		return &CommandError{Op: "uninstall", Stderr: result.Stderr, Err: result.Err}
	}

	return nil
}

// Link runs "brew link" for the named keg.
func (c *client) Link(ctx context.Context, name string) error {
	result := c.runner.Run(ctx, "brew", "link", name)
	if result.Failed() {
		return &CommandError{Op: "link", Stderr: result.Stderr, Err: result.Err}
	}

	return nil
}

// captureLine runs brew with the given args and returns the first
// trimmed output line.
func (c *client) captureLine(ctx context.Context, args ...string) (string, error) {
	result := c.runner.Run(ctx, "brew", args...)
	if result.Failed() {
		return "", &CommandError{Op: strings.Join(args, " "), Stderr: result.Stderr, Err: result.Err}
	}

	out := strings.TrimSpace(result.Stdout)
	if out == "" {
		return "", errors.Newf("brew %s produced no output", strings.Join(args, " "))
	}

	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		out = out[:idx]
	}

	return out, nil
}
