// Package scan discovers unmanaged files under the brew binary prefix.
//
// Matching follows GNU find's -iregex: case-insensitive, and the regex
// must match the whole path rather than a substring. Patterns may omit
// the leading directory part, in which case any parent path is accepted
// before the match.
package scan

import (
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/cockroachdb/errors"
)

// CompilePattern compiles a search pattern with whole-path,
// case-insensitive semantics.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`(?i)\A(?:.*/)?(?:` + pattern + `)\z`)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid search pattern %q", pattern)
	}

	return re, nil
}

// Find returns the paths of all regular files under root whose full
// path matches pattern. Symbolic links are excluded and never descended
// into, which also keeps brew's own managed links out of the result.
// The result is in lexical walk order.
func Find(root, pattern string) ([]string, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}

	var matches []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if re.MatchString(path) {
			matches = append(matches, path)
		}

		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrapf(walkErr, "scanning %s", root)
	}

	return matches, nil
}
