package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kegadopt/kegadopt/internal/brew"
	"github.com/kegadopt/kegadopt/internal/color"
	"github.com/kegadopt/kegadopt/internal/doctor"
	"github.com/kegadopt/kegadopt/internal/exec"
	"github.com/kegadopt/kegadopt/internal/probe"
	"github.com/kegadopt/kegadopt/internal/relocate"
	"github.com/kegadopt/kegadopt/pkg/logger"
)

// fallbackPrefix is checked when brew itself cannot report its prefix.
const fallbackPrefix = "/usr/local"

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the kegadopt environment",
	Long: `Diagnose the environment kegadopt depends on.

Checks:
- brew is on PATH
- brew is recent enough
- The binary prefix exists
- A version probe is registered for every built-in package

Examples:
  kegadopt doctor              # Run all checks
  kegadopt doctor --verbose    # Run with debug logging`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewStderrLogger(cfg.GetRun().IsVerbose())
	runner := exec.NewCommandRunner(cfg.GetBrew().GetTimeout())
	client := brew.NewClient(runner)

	// A broken brew is one of the things being diagnosed, so prefix
	// discovery failure degrades to a default instead of aborting.
	prefix := cfg.GetBrew().Prefix
	if prefix == "" {
		prefix, err = client.Prefix(cmd.Context())
		if err != nil {
			log.Debug("brew prefix discovery failed", "error", err)

			prefix = fallbackPrefix
		}
	}

	binDir := filepath.Join(prefix, "bin")

	registry := probe.NewRegistry()
	registry.Register("meld", probe.NewMeldProbe(runner, binDir))
	registry.Register("virtualbox", probe.NewVirtualBoxProbe(runner, binDir))
	registry.Register("openzfs", probe.NewOpenZFSProbe(openZFSPlistPath(cfg)))

	expected := make([]string, 0, len(relocate.BuiltinPackages()))
	for _, pkg := range relocate.BuiltinPackages() {
		expected = append(expected, pkg.Name)
	}

	checkers := []doctor.HealthChecker{
		doctor.NewBrewAvailableChecker(exec.NewToolChecker()),
		doctor.NewBrewVersionChecker(client, cfg.GetBrew().GetMinVersion()),
		doctor.NewPrefixChecker(binDir),
		doctor.NewProbesChecker(registry, expected),
	}

	theme := color.NewTheme(color.Enabled(noColorFlag) && color.IsTerminal(os.Stdout))
	dr := doctor.NewRunner(checkers, doctor.NewTableReporter(os.Stdout, theme), log)

	return dr.Run(cmd.Context())
}
