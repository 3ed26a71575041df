// Package probe determines installed upstream package versions.
//
// Each supported package registers its own probe strategy under its
// upstream name. The relocation flow resolves probes by name only and
// knows nothing about how any particular version is obtained.
package probe

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrNoVersion is returned when a probe ran but produced no parseable
// version output.
var ErrNoVersion = errors.New("no parseable version output")

// UnknownPackageError is returned when no probe is registered for the
// requested package name.
type UnknownPackageError struct {
	Name string
}

// Error returns the error message.
func (e *UnknownPackageError) Error() string {
	return "no version probe registered for package: " + e.Name
}

// Probe resolves the installed version string of one upstream package.
type Probe interface {
	// Version returns the installed version of the upstream package.
	Version(ctx context.Context) (string, error)

	// Describe returns a short human-readable description of the
	// probe's strategy, for diagnostic output.
	Describe() string
}

// Registry maps package names to their version probes.
type Registry struct {
	probes map[string]Probe
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{probes: make(map[string]Probe)}
}

// Register adds or replaces the probe for a package name.
func (r *Registry) Register(name string, p Probe) {
	r.probes[name] = p
}

// Lookup returns the probe for a package name.
//
//nolint:ireturn // callers work against the Probe interface
func (r *Registry) Lookup(name string) (Probe, error) {
	p, ok := r.probes[name]
	if !ok {
		return nil, &UnknownPackageError{Name: name}
	}

	return p, nil
}

// Names returns all registered package names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.probes))
	for name := range r.probes {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
