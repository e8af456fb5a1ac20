package filesize

import "errors"

var (
	ErrInvalidSize  = errors.New("invalid size")
	ErrNegativeSize = errors.New("size must not be negative")
	ErrSizeOverflow = errors.New("size is too large")
)
