package destination

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPerm is the mode used for directories created by Resolve.
const DefaultPerm fs.FileMode = 0755

// reservedChars may not appear in the path body (after any volume name).
const reservedChars = `*?"<>|:`

type options struct {
	create bool
	perm   fs.FileMode
}

// Option configures Resolve.
type Option func(*options)

// WithCreate makes Resolve create the directory, including parents, when it is missing.
func WithCreate(create bool) Option {
	return func(o *options) { o.create = create }
}

// WithPerm overrides DefaultPerm for created directories. Zero is ignored.
func WithPerm(perm fs.FileMode) Option {
	return func(o *options) {
		if perm != 0 {
			o.perm = perm
		}
	}
}

// Resolve validates path and returns it as an absolute directory path ending in
// filepath.Separator. Nothing is created unless WithCreate(true) is given, and
// nothing is created for a path that fails validation.
func Resolve(path string, opts ...Option) (string, error) {
	o := options{perm: DefaultPerm}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(path) == "" || strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if !IsValidPath(abs) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, abs)
	}

	ok, err := isDir(abs)
	if err != nil {
		return "", err
	}
	if ok {
		return withSeparator(abs), nil
	}

	if !o.create {
		return "", fmt.Errorf("%w: %s", ErrDirectoryNotFound, abs)
	}
	if err := os.MkdirAll(abs, o.perm); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	ok, err = isDir(abs)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrFailedToCreateDirectory, abs)
	}
	return withSeparator(abs), nil
}

// IsValidPath reports whether path is free of reserved characters.
// A leading volume name such as "C:" is not checked.
func IsValidPath(path string) bool {
	if path == "" {
		return false
	}
	body := path[len(filepath.VolumeName(path)):]
	return !strings.ContainsAny(body, reservedChars)
}

// isDir returns false without error when path does not exist.
func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return true, nil
}

func withSeparator(path string) string {
	if strings.HasSuffix(path, string(filepath.Separator)) {
		return path
	}
	return path + string(filepath.Separator)
}
