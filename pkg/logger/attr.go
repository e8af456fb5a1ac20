package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups non-nil errors under "errors". Returns an empty Attr when all are nil.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". Returns an empty Attr for a nil error.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID records the request identifier under "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Input records the upload field name under "input".
func Input(name string) slog.Attr {
	return slog.String("input", name)
}

// Filename records a file name under "filename".
func Filename(name string) slog.Attr {
	return slog.String("filename", name)
}

// Destination records a target path under "destination".
func Destination(path string) slog.Attr {
	return slog.String("destination", path)
}

// MIMEType records a MIME type under "mime".
func MIMEType(mime string) slog.Attr {
	return slog.String("mime", mime)
}

// Size records a byte count under "size".
func Size(bytes int64) slog.Attr {
	return slog.Int64("size", bytes)
}

// Step records the pipeline step name under "step".
func Step(name string) slog.Attr {
	return slog.String("step", name)
}

// Duration records a duration under "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
