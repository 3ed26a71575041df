package probe

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kegadopt/kegadopt/internal/exec"
)

const meldVersionFields = 2

// MeldProbe asks the meld binary for its version.
// The output is a single line of the form "meld 3.21.2".
type MeldProbe struct {
	runner exec.CommandRunner
	binDir string
}

// NewMeldProbe creates a MeldProbe running the meld binary under binDir.
func NewMeldProbe(runner exec.CommandRunner, binDir string) *MeldProbe {
	return &MeldProbe{runner: runner, binDir: binDir}
}

// Version runs "meld --version" and extracts the version token.
func (p *MeldProbe) Version(ctx context.Context) (string, error) {
	bin := filepath.Join(p.binDir, "meld")

	result := p.runner.Run(ctx, bin, "--version")
	if result.Failed() {
		return "", errors.Wrapf(result.Err, "running %s --version: %s", bin, result.Stderr)
	}

	line := strings.TrimSpace(result.Stdout)

	fields := strings.Fields(line)
	if len(fields) < meldVersionFields || fields[0] != "meld" {
		return "", errors.Wrapf(ErrNoVersion, "unexpected meld output %q", line)
	}

	return fields[1], nil
}

// Describe returns the probe strategy description.
func (*MeldProbe) Describe() string {
	return "meld --version"
}
