package upload

import "errors"

var (
	// ErrConfigurationRejected wraps every setter failure.
	ErrConfigurationRejected = errors.New("upload configuration rejected")
	ErrInvalidInput          = errors.New("invalid input name")
	ErrInvalidFilename       = errors.New("invalid filename")
	ErrLimitExceedsHost      = errors.New("size limit exceeds host maximum upload size")
	ErrNilCallback           = errors.New("callback is nil")
	ErrNilTransfer           = errors.New("transfer is nil")

	// Save outcomes.
	ErrInputNotFound      = errors.New("input not found in incoming files")
	ErrOverwriteDenied    = errors.New("destination already exists and overwriting is disabled")
	ErrMIMETypeNotAllowed = errors.New("MIME type is not allowed")
	ErrFileTooLarge       = errors.New("file size exceeds maximum allowed size")
	ErrPersistFailed      = errors.New("failed to persist file")
	ErrCallback           = errors.New("callback failed")
	ErrAlreadySaved       = errors.New("upload already saved")

	ErrFailedToCheckDestination = errors.New("failed to check destination")
)
