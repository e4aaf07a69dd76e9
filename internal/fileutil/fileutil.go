// Package fileutil writes temporary and output files and classifies path
// arguments.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadExtension reports a temp file extension that is empty or could
// escape the temp directory.
var ErrBadExtension = errors.New("invalid file extension")

// tempPrefix names every temp file this module creates.
const tempPrefix = "md2docx-"

// WriteTempFile writes content to a new file named md2docx-*.<extension>
// in the system temp directory. cleanup removes the file and may be called
// more than once.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if extension == "" || strings.ContainsAny(extension, "/\\\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrBadExtension, extension)
	}
	path, err = writeTemp("", tempPrefix+"*."+extension, []byte(content), 0)
	if err != nil {
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory, so readers see either the old file or the complete new one.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := writeTemp(dir, "."+base+".tmp-*", data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// writeTemp creates a file from pattern in dir, writes data and closes it.
// A non-zero perm is applied before close. The file is removed on error.
func writeTemp(dir, pattern string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()

	_, err = f.Write(data)
	if err == nil && perm != 0 {
		err = f.Chmod(perm)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return name, nil
}

// FileExists reports whether path names a regular file (or a symlink to
// one).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsFilePath reports whether s is a path rather than a bare name such as a
// config or style name. Any separator makes it a path.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
