package relocate

import (
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/kegadopt/kegadopt/pkg/logger"
)

const kegDirMode = 0o755

// MoveError is returned when a discovered file could not be moved into
// the keg. The first failure halts the run; files moved before it stay
// in the keg.
type MoveError struct {
	Source string
	Dest   string
	Err    error
}

// Error returns the error message.
func (e *MoveError) Error() string {
	return "moving " + e.Source + " to " + e.Dest + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *MoveError) Unwrap() error {
	return e.Err
}

// moveAll creates the destination directory and moves every file into
// it, preserving filenames and overwriting name collisions. Each move
// is logged individually.
func moveAll(log logger.Logger, files []string, destDir string) (int, uint64, error) {
	if err := os.MkdirAll(destDir, kegDirMode); err != nil {
		return 0, 0, errors.Wrapf(err, "creating keg directory %s", destDir)
	}

	var (
		moved int
		bytes uint64
	)

	for _, src := range files {
		dest := filepath.Join(destDir, filepath.Base(src))

		size, err := moveFile(src, dest)
		if err != nil {
			return moved, bytes, &MoveError{Source: src, Dest: dest, Err: err}
		}

		log.Info("moved file", "source", src, "dest", dest)

		moved++
		bytes += size
	}

	return moved, bytes, nil
}

// moveFile renames src to dest, falling back to copy-and-remove when
// the rename crosses filesystems. Any other rename failure surfaces
// as-is.
func moveFile(src, dest string) (uint64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	size := uint64(info.Size())

	renameErr := os.Rename(src, dest)
	if renameErr == nil {
		return size, nil
	}

	if !errors.Is(renameErr, syscall.EXDEV) {
		return 0, renameErr
	}

	if err := copyFile(src, dest, info.Mode()); err != nil {
		return 0, err
	}

	if err := os.Remove(src); err != nil {
		return 0, errors.Wrap(err, "removing source after copy")
	}

	return size, nil
}

// copyFile copies src to dest with the given mode, truncating dest if
// it already exists.
func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	// O_TRUNC on an existing destination keeps its old mode, which
	// would drop the exec bit of the adopted binary.
	return os.Chmod(dest, mode)
}
