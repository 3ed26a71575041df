// Package relocate moves stray unmanaged binaries into a version-named
// keg and relinks them through Homebrew.
package relocate

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/kegadopt/kegadopt/internal/brew"
	"github.com/kegadopt/kegadopt/internal/probe"
	"github.com/kegadopt/kegadopt/internal/scan"
	"github.com/kegadopt/kegadopt/pkg/logger"
)

// KegSuffix is appended to the upstream name to form the keg name,
// keeping adopted kegs clearly separated from real brew formulae.
const KegSuffix = "-executables"

// Result reports the outcome of one relocation run.
type Result struct {
	Package     string
	KegName     string
	Version     string
	Destination string
	FilesMoved  int
	BytesMoved  uint64
}

// Relocator performs the scan, version-probe, move and relink sequence
// for one package at a time.
type Relocator struct {
	prefix   string
	cellar   string
	registry *probe.Registry
	brew     brew.Client
	log      logger.Logger
}

// New creates a Relocator. prefix is the brew binary prefix that is
// scanned for stray files; cellar is the keg storage root.
func New(
	prefix, cellar string,
	registry *probe.Registry,
	client brew.Client,
	log logger.Logger,
) *Relocator {
	return &Relocator{
		prefix:   prefix,
		cellar:   cellar,
		registry: registry,
		brew:     client,
		log:      log,
	}
}

// KegName derives the keg name for an upstream package.
func KegName(upstreamName string) string {
	return upstreamName + KegSuffix
}

// Relocate adopts all unmanaged files under the prefix matching pattern
// into a keg for upstreamName and relinks them.
//
// Finding nothing to adopt is the steady state and returns a zero-move
// success without touching the version probe, the cellar or brew.
// After a successful move, a link failure leaves the files in the keg
// unlinked; no rollback is attempted.
func (r *Relocator) Relocate(ctx context.Context, pattern, upstreamName string) (*Result, error) {
	log := r.log.With("package", upstreamName)

	versionProbe, err := r.registry.Lookup(upstreamName)
	if err != nil {
		return nil, err
	}

	files, err := scan.Find(r.prefix, pattern)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Package: upstreamName,
		KegName: KegName(upstreamName),
	}

	if len(files) == 0 {
		log.Info("no unmanaged files found", "pattern", pattern)

		return result, nil
	}

	log.Info("found unmanaged files", "count", len(files), "pattern", pattern)

	version, err := versionProbe.Version(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "probing %s version", upstreamName)
	}

	result.Version = version
	result.Destination = filepath.Join(r.cellar, result.KegName, version, "bin")

	r.preemptExistingKeg(ctx, log, result.KegName)

	moved, bytes, err := moveAll(log, files, result.Destination)
	if err != nil {
		return nil, err
	}

	result.FilesMoved = moved
	result.BytesMoved = bytes

	if err := r.brew.Link(ctx, result.KegName); err != nil {
		return nil, errors.Wrapf(err,
			"linking %s: files remain relocated under %s but unlinked",
			result.KegName, result.Destination)
	}

	log.Info("relocation complete",
		"version", version,
		"files", moved,
		"size", humanize.Bytes(bytes),
		"keg", result.Destination,
	)

	return result, nil
}

// preemptExistingKeg uninstalls an already-installed keg so the fresh
// link cannot collide with stale symlinks. brew reports informational
// failures here, so a failed uninstall is logged and ignored.
func (r *Relocator) preemptExistingKeg(ctx context.Context, log logger.Logger, kegName string) {
	installed, err := r.brew.IsInstalled(ctx, kegName)
	if err != nil {
		log.Error("keg query failed, continuing", "keg", kegName, "error", err)

		return
	}

	if !installed {
		return
	}

	log.Info("uninstalling existing keg", "keg", kegName)

	if err := r.brew.Uninstall(ctx, kegName); err != nil {
		log.Error("uninstall failed, continuing", "keg", kegName, "error", err)
	}
}
