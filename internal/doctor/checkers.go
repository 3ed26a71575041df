package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/kegadopt/kegadopt/internal/brew"
	"github.com/kegadopt/kegadopt/internal/exec"
	"github.com/kegadopt/kegadopt/internal/probe"
)

// BrewAvailableChecker verifies the brew binary is in PATH.
type BrewAvailableChecker struct {
	tools exec.ToolChecker
}

// NewBrewAvailableChecker creates a BrewAvailableChecker.
func NewBrewAvailableChecker(tools exec.ToolChecker) *BrewAvailableChecker {
	return &BrewAvailableChecker{tools: tools}
}

// Name returns the name of the check.
func (*BrewAvailableChecker) Name() string {
	return "Homebrew available"
}

// Check performs the availability check.
func (c *BrewAvailableChecker) Check(_ context.Context) CheckResult {
	if !c.tools.IsAvailable("brew") {
		return FailError(c.Name(), "brew not found in PATH").
			WithDetails("kegadopt relocates binaries through brew and cannot run without it")
	}

	return Pass(c.Name(), "brew found in PATH")
}

// BrewVersionChecker verifies Homebrew meets a minimum version.
type BrewVersionChecker struct {
	client     brew.Client
	minVersion string
}

// NewBrewVersionChecker creates a BrewVersionChecker.
func NewBrewVersionChecker(client brew.Client, minVersion string) *BrewVersionChecker {
	return &BrewVersionChecker{client: client, minVersion: minVersion}
}

// Name returns the name of the check.
func (*BrewVersionChecker) Name() string {
	return "Homebrew version"
}

// Check compares the installed brew version against the minimum.
func (c *BrewVersionChecker) Check(ctx context.Context) CheckResult {
	installed, err := c.client.Version(ctx)
	if err != nil {
		return FailWarning(c.Name(), "could not determine brew version").
			WithDetails(err.Error())
	}

	installedVer, err := semver.NewVersion(installed)
	if err != nil {
		return FailWarning(c.Name(), fmt.Sprintf("unparseable brew version %q", installed))
	}

	minVer, err := semver.NewVersion(c.minVersion)
	if err != nil {
		return Skip(c.Name(), fmt.Sprintf("invalid minimum version %q configured", c.minVersion))
	}

	if installedVer.LessThan(minVer) {
		return FailError(c.Name(),
			fmt.Sprintf("brew %s is older than required %s", installed, c.minVersion)).
			WithDetails("Run: brew update")
	}

	return Pass(c.Name(), "brew "+installed)
}

// PrefixChecker verifies the binary prefix directory exists and is a
// directory.
type PrefixChecker struct {
	prefix string
}

// NewPrefixChecker creates a PrefixChecker for the given prefix path.
func NewPrefixChecker(prefix string) *PrefixChecker {
	return &PrefixChecker{prefix: prefix}
}

// Name returns the name of the check.
func (*PrefixChecker) Name() string {
	return "Binary prefix"
}

// Check verifies the prefix directory.
func (c *PrefixChecker) Check(_ context.Context) CheckResult {
	if c.prefix == "" {
		return Skip(c.Name(), "prefix not resolved")
	}

	info, err := os.Stat(c.prefix)
	if err != nil {
		return FailError(c.Name(), c.prefix+" does not exist")
	}

	if !info.IsDir() {
		return FailError(c.Name(), c.prefix+" is not a directory")
	}

	return Pass(c.Name(), c.prefix)
}

// ProbesChecker verifies every built-in package has a registered probe.
type ProbesChecker struct {
	registry *probe.Registry
	expected []string
}

// NewProbesChecker creates a ProbesChecker expecting probes for the
// given package names.
func NewProbesChecker(registry *probe.Registry, expected []string) *ProbesChecker {
	return &ProbesChecker{registry: registry, expected: expected}
}

// Name returns the name of the check.
func (*ProbesChecker) Name() string {
	return "Version probes"
}

// Check verifies probe registration.
func (c *ProbesChecker) Check(_ context.Context) CheckResult {
	var missing []string

	for _, name := range c.expected {
		if _, err := c.registry.Lookup(name); err != nil {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return FailError(c.Name(), "missing probes: "+strings.Join(missing, ", "))
	}

	return Pass(c.Name(),
		fmt.Sprintf("%d probes registered", len(c.registry.Names())))
}
