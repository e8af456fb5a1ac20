package mimepolicy

import "errors"

var (
	ErrInvalidMIMEType   = errors.New("invalid MIME type")
	ErrUnknownPreset     = errors.New("unknown MIME preset")
	ErrEmptyList         = errors.New("MIME type list is empty")
	ErrInvalidPresetFile = errors.New("invalid MIME preset file")
)
