package probe

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"howett.net/plist"
)

// DefaultOpenZFSPlist is the bundle metadata file shipped by the
// OpenZFS on OS X installer. The zfs executables expose no version
// flag, so the version comes from the kext bundle instead.
const DefaultOpenZFSPlist = "/Library/Extensions/OpenZFS.kext/Contents/Info.plist"

// bundleInfo carries the one plist key the probe cares about.
type bundleInfo struct {
	ShortVersion string `plist:"CFBundleShortVersionString"`
}

// OpenZFSProbe reads the installed version out of the OpenZFS kext
// bundle property list.
type OpenZFSProbe struct {
	plistPath string
}

// NewOpenZFSProbe creates an OpenZFSProbe reading the given plist.
// An empty path selects DefaultOpenZFSPlist.
func NewOpenZFSProbe(plistPath string) *OpenZFSProbe {
	if plistPath == "" {
		plistPath = DefaultOpenZFSPlist
	}

	return &OpenZFSProbe{plistPath: plistPath}
}

// Version decodes the bundle plist and returns CFBundleShortVersionString.
func (p *OpenZFSProbe) Version(_ context.Context) (string, error) {
	data, err := os.ReadFile(p.plistPath)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", p.plistPath)
	}

	var info bundleInfo
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return "", errors.Wrapf(err, "decoding %s", p.plistPath)
	}

	if info.ShortVersion == "" {
		return "", errors.Wrapf(ErrNoVersion, "%s has no CFBundleShortVersionString", p.plistPath)
	}

	return info.ShortVersion, nil
}

// Describe returns the probe strategy description.
func (p *OpenZFSProbe) Describe() string {
	return "CFBundleShortVersionString from " + p.plistPath
}
