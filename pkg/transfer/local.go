package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

const (
	filePerm   = 0644
	bufferSize = 32 * 1024
)

// MoveTransfer renames the source to the destination.
type MoveTransfer struct {
	fallback CopyTransfer
}

// Move returns a transferer that renames src to dst. When the two paths are on
// different devices the file is copied and the source removed.
func Move() MoveTransfer {
	return MoveTransfer{fallback: Copy()}
}

func (MoveTransfer) String() string { return NameMove }

// Transfer implements upload.Transferer.
func (m MoveTransfer) Transfer(ctx context.Context, src, dst string) error {
	if err := checkPaths(src, dst); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return contextError(err, "move")
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("%w: %w", ErrFailedToMoveFile, err)
	}

	if err := m.fallback.Transfer(ctx, src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove source: %w", ErrFailedToMoveFile, err)
	}
	return nil
}

// CopyTransfer copies the source into the destination, leaving the source in place.
type CopyTransfer struct {
	bufferSize int
}

// Copy returns a transferer that copies src into dst with a 32KB buffer.
// The copy is written next to dst and renamed over it once complete, so an
// existing destination is replaced only by a whole file. The result has mode 0644.
func Copy() CopyTransfer {
	return CopyTransfer{bufferSize: bufferSize}
}

func (CopyTransfer) String() string { return NameCopy }

// Transfer implements upload.Transferer. A failed or canceled copy removes
// its temporary file and leaves dst untouched.
func (c CopyTransfer) Transfer(ctx context.Context, src, dst string) error {
	if err := checkPaths(src, dst); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return contextError(err, "copy")
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToOpenFile, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToCreateFile, err)
	}
	tmp := out.Name()

	fail := func(err error) error {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}

	if err := out.Chmod(filePerm); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrFailedToCreateFile, err))
	}

	size := c.bufferSize
	if size <= 0 {
		size = bufferSize
	}
	buf := make([]byte, size)
	for {
		if err := ctx.Err(); err != nil {
			return fail(contextError(err, "copy"))
		}

		n, readErr := in.Read(buf)
		if n > 0 {
			nw, writeErr := out.Write(buf[:n])
			if writeErr != nil {
				return fail(fmt.Errorf("%w: %w", ErrFailedToWriteFile, writeErr))
			}
			if nw != n {
				return fail(fmt.Errorf("%w: %w", ErrFailedToWriteFile, io.ErrShortWrite))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fail(fmt.Errorf("%w: %w", ErrFailedToReadFile, readErr))
		}
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrFailedToMoveFile, err)
	}
	return nil
}

func checkPaths(src, dst string) error {
	if src == "" {
		return fmt.Errorf("%w: empty source", ErrInvalidPath)
	}
	if dst == "" {
		return fmt.Errorf("%w: empty destination", ErrInvalidPath)
	}
	return nil
}

func contextError(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
}
