package probe

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kegadopt/kegadopt/internal/exec"
)

// VirtualBoxProbe asks VBoxManage for its version.
// VBoxManage prints the bare version string (e.g. "6.1.34r150636"),
// so the trimmed output is used as-is.
type VirtualBoxProbe struct {
	runner exec.CommandRunner
	binDir string
}

// NewVirtualBoxProbe creates a VirtualBoxProbe running VBoxManage under binDir.
func NewVirtualBoxProbe(runner exec.CommandRunner, binDir string) *VirtualBoxProbe {
	return &VirtualBoxProbe{runner: runner, binDir: binDir}
}

// Version runs "VBoxManage --version" and returns its raw output.
func (p *VirtualBoxProbe) Version(ctx context.Context) (string, error) {
	bin := filepath.Join(p.binDir, "VBoxManage")

	result := p.runner.Run(ctx, bin, "--version")
	if result.Failed() {
		return "", errors.Wrapf(result.Err, "running %s --version: %s", bin, result.Stderr)
	}

	version := strings.TrimSpace(result.Stdout)
	if version == "" {
		return "", errors.Wrap(ErrNoVersion, "VBoxManage produced no output")
	}

	return version, nil
}

// Describe returns the probe strategy description.
func (*VirtualBoxProbe) Describe() string {
	return "VBoxManage --version"
}
