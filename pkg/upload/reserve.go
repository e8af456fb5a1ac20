package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const reservationPerm = 0o644

// reservation is an empty placeholder created with O_EXCL at the destination.
// It claims the name between the existence check and the transfer.
type reservation struct {
	path string
	info fs.FileInfo
}

// reserve creates dst exclusively. It returns ErrOverwriteDenied when any
// entry, of any type, already occupies dst.
func reserve(dst string) (*reservation, error) {
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, reservationPerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, ErrOverwriteDenied
		}
		return nil, fmt.Errorf("%w: %w", ErrFailedToCheckDestination, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("%w: %w", ErrFailedToCheckDestination, err)
	}
	return &reservation{path: dst, info: info}, nil
}

// release removes the placeholder if it is still the empty file reserve created.
// Anything a transfer wrote in its place is left untouched.
func (r *reservation) release() bool {
	if r == nil {
		return false
	}
	current, err := os.Lstat(r.path)
	if err != nil || !os.SameFile(r.info, current) || current.Size() != 0 {
		return false
	}
	return os.Remove(r.path) == nil
}

// exists reports whether anything occupies dst on the local filesystem.
func exists(dst string) (bool, error) {
	_, err := os.Lstat(dst)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrFailedToCheckDestination, err)
	}
}
