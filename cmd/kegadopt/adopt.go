package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kegadopt/kegadopt/internal/relocate"
)

const adoptArgCount = 2

var adoptCmd = &cobra.Command{
	Use:   "adopt PATTERN PACKAGE",
	Short: "Adopt files matching PATTERN into a keg for PACKAGE",
	Long: `Adopt scans the brew binary prefix for unmanaged files whose path
matches PATTERN (case-insensitive, find -iregex style) and moves them
into a version-named keg for PACKAGE, then relinks the keg.

PACKAGE must have a registered version probe (meld, virtualbox,
openzfs).

Examples:
  kegadopt adopt 'meld.*' meld
  kegadopt adopt 'v(irtual)?box.*' virtualbox`,
	Args: cobra.ExactArgs(adoptArgCount),
	RunE: runAdopt,
}

func init() {
	rootCmd.AddCommand(adoptCmd)
}

func runAdopt(cmd *cobra.Command, args []string) error {
	pattern, pkgName := args[0], args[1]

	a, err := setup(cmd)
	if err != nil {
		return err
	}

	relocator := relocate.New(a.binDir, a.cellar, a.registry, a.brew, a.log)

	result, err := relocator.Relocate(cmd.Context(), pattern, pkgName)
	if err != nil {
		return errors.Wrapf(err, "adopting %s", pkgName)
	}

	if result.FilesMoved == 0 {
		a.log.Info("nothing to adopt", "package", pkgName, "pattern", pattern)
	}

	return nil
}
