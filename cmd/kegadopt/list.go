package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kegadopt/kegadopt/internal/exec"
	"github.com/kegadopt/kegadopt/internal/probe"
	"github.com/kegadopt/kegadopt/internal/relocate"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in packages and their search patterns",
	Long: `List the built-in packages a default run processes, the search
pattern each one uses (including configuration overrides) and how its
installed version is probed.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Probes are only described here, never run, so the runner and bin
	// directory do not need a live brew install behind them.
	runner := exec.NewCommandRunner(cfg.GetBrew().GetTimeout())
	binDir := filepath.Join(cfg.GetBrew().Prefix, "bin")

	probes := map[string]probe.Probe{
		"meld":       probe.NewMeldProbe(runner, binDir),
		"virtualbox": probe.NewVirtualBoxProbe(runner, binDir),
		"openzfs":    probe.NewOpenZFSProbe(openZFSPlistPath(cfg)),
	}

	t := tablewriter.NewTable(os.Stdout)
	t.Header([]string{"Package", "Keg", "Pattern", "Enabled", "Version Probe"})

	for _, pkg := range relocate.BuiltinPackages() {
		pkgCfg := cfg.GetPackage(pkg.Name)

		pattern := pkg.Pattern
		if pkgCfg.Pattern != "" {
			pattern = pkgCfg.Pattern
		}

		describe := ""
		if p, ok := probes[pkg.Name]; ok {
			describe = p.Describe()
		}

		_ = t.Append([]string{
			pkg.Name,
			relocate.KegName(pkg.Name),
			pattern,
			strconv.FormatBool(pkgCfg.IsEnabled()),
			describe,
		})
	}

	return t.Render()
}
