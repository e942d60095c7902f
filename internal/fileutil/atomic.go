// Package fileutil provides filesystem helpers for writing generated
// material (configuration, random key files) safely.
package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// WriteAtomic writes data to path with the given permissions so that readers
// see either the old content or the new content, never a partial file. Data
// goes to a temp file in the same directory, is fsynced, then renamed.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return coreerr.Wrap(coreerr.ErrInvalidInput, "path is empty")
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return ioError("creating temp file", path, err)
	}

	tmpPath := tmpFile.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmpFile.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return ioError("writing temp file", path, err)
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return ioError("setting permissions", path, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return ioError("syncing temp file", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return ioError("closing temp file", path, err)
	}
	closed = true

	if err := os.Rename(tmpPath, path); err != nil { //nolint:gosec // G703: path is validated by caller
		return ioError("renaming temp file", path, err)
	}

	// Best effort directory sync for rename durability.
	if dirFile, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is derived from validated path
		_ = dirFile.Sync()
		_ = dirFile.Close()
	}

	return nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func ioError(step, path string, err error) error {
	return coreerr.WithDetails(coreerr.WithCause(coreerr.ErrIO, err), map[string]string{
		"path": path,
		"step": step,
	})
}
