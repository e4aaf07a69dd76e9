package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader reads style sheets and part templates from a directory
// laid out as styles/<name>.xml and templates/<name>.xml.
type FilesystemLoader struct {
	basePath string // absolute, symlinks resolved
}

var _ AssetLoader = (*FilesystemLoader)(nil)

// NewFilesystemLoader checks that basePath is a readable directory.
// Errors wrap ErrInvalidBasePath.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	dir, err := realPath(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	if _, err := os.ReadDir(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, dir)
		}
		// ReadDir on a regular file fails too; say which it was.
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, dir)
		}
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: dir}, nil
}

// LoadStyle reads styles/<name>.xml.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	return f.load("styles", name, ErrStyleNotFound)
}

// LoadTemplate reads templates/<name>.xml.
func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return f.load("templates", name, ErrTemplateNotFound)
}

func (f *FilesystemLoader) load(dir, name string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	path := filepath.Join(f.basePath, dir, name+".xml")
	if !f.contains(path) {
		return "", fmt.Errorf("%w: %s/%s escapes base directory", ErrPathTraversal, dir, name)
	}

	content, err := os.ReadFile(path) // #nosec G304 -- name validated, path contained
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", notFound, name)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// contains reports whether path, after following symlinks, stays under
// the base directory. A path that does not exist yet is checked as is.
func (f *FilesystemLoader) contains(path string) bool {
	resolved, err := realPath(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(f.basePath, resolved)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// realPath returns the absolute form of p with symlinks resolved when p
// exists.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
