// Package relocator moves single files, falling back to copy and delete when
// a rename is rejected.
package relocator

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"mmv/internal/logging"
	"mmv/internal/mmverr"
)

// Strategy records how a file ended up at its destination.
type Strategy string

const (
	// Renamed means the filesystem moved the file in one rename.
	Renamed Strategy = "RENAME"
	// Copied means the rename failed and the file was copied then deleted.
	Copied Strategy = "COPY_DELETE"
)

// Relocator moves files on a filesystem.
type Relocator struct {
	fs     afero.Fs
	logger zerolog.Logger
}

// New creates a Relocator operating on fsys.
func New(fsys afero.Fs) *Relocator {
	return &Relocator{
		fs:     fsys,
		logger: logging.GetLogger("relocator"),
	}
}

// Exists reports whether something exists at path.
func (r *Relocator) Exists(path string) bool {
	_, err := r.fs.Stat(path)
	return err == nil
}

// Move relocates src to dst. When dst exists and overwrite is false it fails
// with a FILE_EXISTS error before touching anything. A partially completed
// copy is not rolled back.
func (r *Relocator) Move(src, dst string, overwrite bool) (Strategy, error) {
	if !overwrite && r.Exists(dst) {
		return "", mmverr.Newf(mmverr.ErrFileExists,
			"the file %s already exists, use --force to overwrite it", dst).
			WithDetail("source", src).
			WithDetail("destination", dst)
	}

	renameErr := r.fs.Rename(src, dst)
	if renameErr == nil {
		return Renamed, nil
	}

	r.logger.Debug().
		Err(renameErr).
		Str("source", src).
		Str("destination", dst).
		Msg("Rename failed, falling back to copy and delete")

	if err := r.copyAndDelete(src, dst); err != nil {
		return "", err
	}
	return Copied, nil
}

// copyAndDelete copies a file to a new location and deletes the original.
// Used as a fallback when Rename fails (e.g., cross-device moves).
func (r *Relocator) copyAndDelete(src, dst string) error {
	in, err := r.fs.Open(src)
	if err != nil {
		return ioError(err, "failed to open source", src, dst)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return ioError(err, "failed to stat source", src, dst)
	}
	if info.IsDir() {
		return ioError(&fs.PathError{Op: "copy", Path: src, Err: errors.New("is a directory")},
			"cannot copy source", src, dst)
	}

	out, err := r.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return ioError(err, "failed to create destination", src, dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return ioError(err, "failed to copy content", src, dst)
	}
	if err := out.Close(); err != nil {
		return ioError(err, "failed to write destination", src, dst)
	}

	// The handle must be released before removal on some platforms.
	in.Close()
	if err := r.fs.Remove(src); err != nil {
		return ioError(err, "failed to remove source", src, dst)
	}
	return nil
}

func ioError(err error, message, src, dst string) error {
	return mmverr.Wrapf(err, mmverr.ErrIO, "%s moving %s to %s", message, src, dst).
		WithDetail("source", src).
		WithDetail("destination", dst)
}
