package destination

import "errors"

var (
	ErrInvalidPath             = errors.New("invalid destination path")
	ErrDirectoryNotFound       = errors.New("destination directory not found")
	ErrNotDirectory            = errors.New("destination is not a directory")
	ErrFailedToCreateDirectory = errors.New("failed to create destination directory")
	ErrFailedToStatPath        = errors.New("failed to stat destination path")
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute destination path")
)
