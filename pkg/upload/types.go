package upload

import (
	"context"
	"slices"

	"github.com/dmitrymomot/uploadkit/pkg/auditlog"
)

// IncomingFile describes one uploaded file as extracted from a request.
type IncomingFile struct {
	Name           string // client supplied original filename
	TmpLocation    string // temporary file holding the uploaded bytes
	DeclaredMIME   string // client supplied MIME type
	Size           int64
	TransportError int // 0 when the transport reported no error
}

// Files maps form field names to incoming files.
type Files map[string]IncomingFile

// Result is the record an Uploader builds while saving. Values handed out by
// Info, Save and callbacks are copies.
type Result struct {
	Status           bool             `json:"status"`
	MIME             string           `json:"mime"`
	Filename         string           `json:"filename"`
	Original         string           `json:"original"`
	Tmp              string           `json:"-"`
	Size             int64            `json:"size"`
	SizeFormatted    string           `json:"size_formatted"`
	Destination      string           `json:"destination"`
	AllowedMIMETypes []string         `json:"allowed_mime_types"`
	Log              []auditlog.Entry `json:"log"`
	Error            int              `json:"error"`
}

func (r Result) clone() Result {
	r.AllowedMIMETypes = slices.Clone(r.AllowedMIMETypes)
	r.Log = slices.Clone(r.Log)
	return r
}

// Callback is run before and after the transfer with a snapshot of the result.
// A returned error aborts Save and is returned wrapped in ErrCallback.
type Callback func(ctx context.Context, info Result) error

// Transferer persists the file at src to dst.
type Transferer interface {
	Transfer(ctx context.Context, src, dst string) error
}

// TransferFunc adapts a function to Transferer.
type TransferFunc func(ctx context.Context, src, dst string) error

func (f TransferFunc) Transfer(ctx context.Context, src, dst string) error {
	return f(ctx, src, dst)
}

// ExistenceChecker is implemented by transferers whose destination namespace is
// not the local filesystem. When present it replaces the local existence check.
type ExistenceChecker interface {
	Exists(ctx context.Context, dst string) (bool, error)
}

// Sink receives the final result of every Save call.
type Sink interface {
	Record(ctx context.Context, info Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, info Result) error

func (f SinkFunc) Record(ctx context.Context, info Result) error {
	return f(ctx, info)
}
