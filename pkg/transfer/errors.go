package transfer

import "errors"

var (
	ErrUnknownTransfer = errors.New("unknown transfer")
	ErrInvalidPath     = errors.New("invalid path")

	// Local filesystem errors
	ErrFailedToOpenFile   = errors.New("failed to open file")
	ErrFailedToCreateFile = errors.New("failed to create file")
	ErrFailedToWriteFile  = errors.New("failed to write file")
	ErrFailedToReadFile   = errors.New("failed to read file")
	ErrFailedToMoveFile   = errors.New("failed to move file")

	// S3-specific errors
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// Context and cancellation errors
	ErrOperationTimeout  = errors.New("operation timed out")
	ErrOperationCanceled = errors.New("operation canceled")

	// Configuration errors
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
)
