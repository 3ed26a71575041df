// Package main provides the CLI entry point for kegadopt.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/kegadopt/kegadopt/internal/brew"
	internalconfig "github.com/kegadopt/kegadopt/internal/config"
	"github.com/kegadopt/kegadopt/internal/exec"
	"github.com/kegadopt/kegadopt/internal/probe"
	"github.com/kegadopt/kegadopt/internal/relocate"
	"github.com/kegadopt/kegadopt/pkg/config"
	"github.com/kegadopt/kegadopt/pkg/logger"
)

const (
	// ExitCodeOK indicates every requested package was adopted.
	ExitCodeOK = 0

	// ExitCodeFailure indicates at least one package failed.
	ExitCodeFailure = 1

	durationDisplayUnits = 2
)

var (
	prefixFlag    string
	cellarFlag    string
	keepGoingFlag bool
	verboseFlag   bool
	configFlag    string
	noColorFlag   bool
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return ExitCodeFailure
	}

	return ExitCodeOK
}

var rootCmd = &cobra.Command{
	Use:   "kegadopt",
	Short: "Adopt stray binaries into Homebrew kegs",
	Long: `kegadopt scans the Homebrew binary prefix for executables that were
installed outside of brew, moves them into a version-named keg in the
cellar and relinks them so brew manages them from then on.

Without arguments it processes every enabled built-in package
(meld, virtualbox, openzfs) in order.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		checkVersionFlag()
	},
	RunE:              runAll,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&prefixFlag,
		"prefix",
		"",
		"Homebrew prefix (default: brew --prefix)",
	)
	rootCmd.PersistentFlags().StringVar(
		&cellarFlag,
		"cellar",
		"",
		"Homebrew cellar (default: brew --cellar)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&keepGoingFlag,
		"keep-going",
		false,
		"Continue with remaining packages after a failure",
	)
	rootCmd.PersistentFlags().BoolVar(
		&verboseFlag,
		"verbose",
		false,
		"Enable debug logging",
	)
	rootCmd.PersistentFlags().StringVarP(
		&configFlag,
		"config",
		"c",
		"",
		"Path to configuration file (default: ~/.kegadopt/config.toml)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&noColorFlag,
		"no-color",
		false,
		"Disable colored output",
	)
}

// app bundles everything a command needs after configuration has been
// loaded and the brew paths resolved.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	runner   exec.CommandRunner
	brew     brew.Client
	registry *probe.Registry

	// prefix is the brew prefix; binDir is prefix/bin, the scan root.
	prefix string
	binDir string
	cellar string
}

// setup loads configuration, honors flag overrides and resolves the
// brew paths. Commands that do not talk to brew (list, completion)
// build their own lighter state instead.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.NewStderrLogger(cfg.GetRun().IsVerbose())
	runner := exec.NewCommandRunner(cfg.GetBrew().GetTimeout())
	client := brew.NewClient(runner)

	prefix, cellar, err := resolvePaths(cmd.Context(), cfg, client)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		runner: runner,
		brew:   client,
		prefix: prefix,
		binDir: filepath.Join(prefix, "bin"),
		cellar: cellar,
	}
	a.registry = buildRegistry(a)

	return a, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader, err := internalconfig.NewKoanfLoader()
	if err != nil {
		return nil, errors.Wrap(err, "initializing config loader")
	}

	if configFlag != "" {
		loader.SetGlobalConfigPath(configFlag)
	}

	cfg, err := loader.Load(flagOverrides(cmd))
	if err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}

	return cfg, nil
}

// flagOverrides maps only the flags the user actually set, so unset
// flags never shadow file or environment values.
func flagOverrides(cmd *cobra.Command) map[string]any {
	overrides := map[string]any{}

	if cmd.Flags().Changed("prefix") {
		overrides["brew.prefix"] = prefixFlag
	}

	if cmd.Flags().Changed("cellar") {
		overrides["brew.cellar"] = cellarFlag
	}

	if cmd.Flags().Changed("keep-going") {
		overrides["run.keep_going"] = keepGoingFlag
	}

	if cmd.Flags().Changed("verbose") {
		overrides["run.verbose"] = verboseFlag
	}

	return overrides
}

// resolvePaths returns the brew prefix and cellar, preferring
// configured values and falling back to brew discovery.
func resolvePaths(
	ctx context.Context,
	cfg *config.Config,
	client brew.Client,
) (prefix, cellar string, err error) {
	brewCfg := cfg.GetBrew()

	prefix = brewCfg.Prefix
	if prefix == "" {
		prefix, err = client.Prefix(ctx)
		if err != nil {
			return "", "", errors.Wrap(err, "discovering brew prefix")
		}
	}

	cellar = brewCfg.Cellar
	if cellar == "" {
		cellar, err = client.Cellar(ctx)
		if err != nil {
			return "", "", errors.Wrap(err, "discovering brew cellar")
		}
	}

	return prefix, cellar, nil
}

func buildRegistry(a *app) *probe.Registry {
	registry := probe.NewRegistry()
	registry.Register("meld", probe.NewMeldProbe(a.runner, a.binDir))
	registry.Register("virtualbox", probe.NewVirtualBoxProbe(a.runner, a.binDir))
	registry.Register("openzfs", probe.NewOpenZFSProbe(openZFSPlistPath(a.cfg)))

	return registry
}

func openZFSPlistPath(cfg *config.Config) string {
	if path := cfg.GetPackage("openzfs").PlistPath; path != "" {
		return path
	}

	return probe.DefaultOpenZFSPlist
}

func runAll(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	relocator := relocate.New(a.binDir, a.cellar, a.registry, a.brew, a.log)

	start := time.Now()

	var (
		totalFiles int
		totalBytes uint64
		failed     []string
	)

	for _, pkg := range relocate.BuiltinPackages() {
		pkgCfg := a.cfg.GetPackage(pkg.Name)
		if !pkgCfg.IsEnabled() {
			a.log.Debug("package disabled, skipping", "package", pkg.Name)

			continue
		}

		pattern := pkg.Pattern
		if pkgCfg.Pattern != "" {
			pattern = pkgCfg.Pattern
		}

		result, err := relocator.Relocate(cmd.Context(), pattern, pkg.Name)
		if err != nil {
			if !a.cfg.GetRun().IsKeepGoing() {
				return errors.Wrapf(err, "adopting %s", pkg.Name)
			}

			a.log.Error("adoption failed, continuing",
				"package", pkg.Name,
				"error", err,
			)

			failed = append(failed, pkg.Name)

			continue
		}

		totalFiles += result.FilesMoved
		totalBytes += result.BytesMoved
	}

	a.log.Info("run complete",
		"files_moved", totalFiles,
		"bytes_moved", humanize.Bytes(totalBytes),
		"elapsed", formatDuration(time.Since(start)),
	)

	if len(failed) > 0 {
		return errors.Newf("failed packages: %v", failed)
	}

	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		d = d.Round(time.Millisecond)
	} else {
		d = d.Round(time.Second)
	}

	return durafmt.Parse(d).LimitFirstN(durationDisplayUnits).String()
}
