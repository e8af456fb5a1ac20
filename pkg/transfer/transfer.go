package transfer

import (
	"context"
	"fmt"
	"strings"
)

// Names accepted by ByName and by upload.Config.
const (
	NameMove = "move"
	NameCopy = "copy"
	NameS3   = "s3"
)

// Transferer persists the file at src to dst.
type Transferer interface {
	Transfer(ctx context.Context, src, dst string) error
}

// ByName returns the local transferer registered under name.
// S3 needs credentials and is built with NewS3 instead.
func ByName(name string) (Transferer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameMove:
		return Move(), nil
	case NameCopy:
		return Copy(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransfer, name)
	}
}
