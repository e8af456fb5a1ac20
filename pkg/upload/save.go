package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/uploadkit/pkg/filesize"
	"github.com/dmitrymomot/uploadkit/pkg/logger"
)

// Save validates the bound file and persists it. The steps run in a fixed
// order and stop at the first failure, leaving the fields populated so far in
// the result:
//
//  1. input lookup
//  2. filename resolution
//  3. result population
//  4. existence and overwrite check
//  5. before callback
//  6. MIME type check
//  7. size check
//  8. transfer
//  9. after callback, run whether or not the transfer succeeded
//
// Save may be called once. Later calls return ErrAlreadySaved and change nothing.
func (u *Uploader) Save(ctx context.Context) (Result, error) {
	if u.saved {
		u.logger.WarnContext(ctx, "upload already saved", logger.Component("upload"), logger.Input(u.input))
		return u.Info(), ErrAlreadySaved
	}
	u.saved = true

	start := u.now()
	err := u.save(ctx)
	u.log.InfoContext(ctx, "save finished",
		slog.Bool("status", u.result.Status),
		logger.Duration(u.now().Sub(start)),
	)

	info := u.Info()
	if u.sink != nil {
		if serr := u.sink.Record(ctx, info); serr != nil {
			u.logger.ErrorContext(ctx, "failed to record upload result",
				logger.Component("upload"),
				logger.Error(serr),
			)
		}
	}
	return info, err
}

func (u *Uploader) save(ctx context.Context) error {
	// 1. input
	file, ok := u.files[u.input]
	if u.input == "" || len(u.files) == 0 || !ok {
		u.log.ErrorContext(ctx, "input not found in incoming files", logger.Step("input"), logger.Input(u.input))
		return fmt.Errorf("%w: %q", ErrInputNotFound, u.input)
	}
	u.log.InfoContext(ctx, "input found",
		logger.Step("input"),
		logger.Input(u.input),
		logger.Group("file",
			logger.Filename(file.Name),
			logger.MIMEType(file.DeclaredMIME),
			logger.Size(file.Size),
		),
	)
	if file.TransportError != 0 {
		u.log.WarnContext(ctx, "transport reported an error",
			logger.Step("input"),
			slog.Int("code", file.TransportError),
		)
	}

	// 2. filename
	name := SanitizeFilename(file.Name)
	if u.filename != "" {
		ext := Extension(file.Name)
		name = ApplyPattern(u.filename, ext)
		u.log.InfoContext(ctx, "extension extracted", logger.Step("filename"), slog.String("extension", ext))
	}
	u.log.InfoContext(ctx, "filename resolved", logger.Step("filename"), logger.Filename(name))

	// 3. result
	u.result.MIME = file.DeclaredMIME
	u.result.Filename = name
	u.result.Original = file.Name
	u.result.Tmp = file.TmpLocation
	u.result.Size = file.Size
	u.result.SizeFormatted = filesize.Format(file.Size)
	dst := u.destDir + name
	u.result.Destination = dst
	u.result.Error = file.TransportError

	// 4. existence
	res, err := u.checkDestination(ctx, dst)
	if err != nil {
		return err
	}
	defer func() {
		if !u.result.Status && res.release() {
			u.log.InfoContext(ctx, "reservation released", logger.Step("destination"), slog.String("path", dst))
		}
	}()

	// 5. before callback
	if u.before != nil {
		if err := u.before(ctx, u.Info()); err != nil {
			u.log.ErrorContext(ctx, "before callback failed", logger.Step("before"), logger.Error(err))
			return fmt.Errorf("%w: before: %w", ErrCallback, err)
		}
		u.log.InfoContext(ctx, "before callback completed", logger.Step("before"))
	}

	// 6. mime
	if !u.policy.IsAllowed(file.DeclaredMIME) {
		u.log.ErrorContext(ctx, "mime type not allowed", logger.Step("mime"), logger.MIMEType(file.DeclaredMIME))
		return fmt.Errorf("%w: %q", ErrMIMETypeNotAllowed, file.DeclaredMIME)
	}
	u.log.InfoContext(ctx, "mime type allowed", logger.Step("mime"), logger.MIMEType(file.DeclaredMIME))

	// 7. size
	if u.maxSize > 0 && file.Size > u.maxSize {
		u.log.ErrorContext(ctx, "file size exceeds maximum allowed size",
			logger.Step("size"),
			slog.String("size", u.result.SizeFormatted),
			slog.String("limit", filesize.Format(u.maxSize)),
		)
		return fmt.Errorf("%w: %s > %s", ErrFileTooLarge, u.result.SizeFormatted, filesize.Format(u.maxSize))
	}
	u.log.InfoContext(ctx, "file size accepted", logger.Step("size"), logger.Size(file.Size))

	// 8. transfer
	var persistErr error
	if err := u.transfer.Transfer(ctx, file.TmpLocation, dst); err != nil {
		u.log.ErrorContext(ctx, "failed to persist file", logger.Step("transfer"), logger.Error(err))
		persistErr = fmt.Errorf("%w: %w", ErrPersistFailed, err)
	} else {
		u.result.Status = true
		u.log.InfoContext(ctx, "file persisted", logger.Step("transfer"), slog.String("path", dst))
	}

	// 9. after callback
	var afterErr error
	if u.after != nil {
		if err := u.after(ctx, u.Info()); err != nil {
			u.log.ErrorContext(ctx, "after callback failed", logger.Step("after"), logger.Error(err))
			afterErr = fmt.Errorf("%w: after: %w", ErrCallback, err)
		} else {
			u.log.InfoContext(ctx, "after callback completed", logger.Step("after"))
		}
	}

	if persistErr != nil && afterErr != nil {
		u.log.ErrorContext(ctx, "transfer and after callback both failed",
			logger.Step("after"),
			logger.Errors(persistErr, afterErr),
		)
	}
	return errors.Join(persistErr, afterErr)
}

// checkDestination answers whether dst may be written. Transferers that
// implement ExistenceChecker are asked directly. Otherwise a local placeholder
// is reserved when overwriting is disabled.
func (u *Uploader) checkDestination(ctx context.Context, dst string) (*reservation, error) {
	if ec, ok := u.transfer.(ExistenceChecker); ok {
		found, err := ec.Exists(ctx, dst)
		if err != nil {
			u.log.ErrorContext(ctx, "failed to check destination", logger.Step("destination"), logger.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrFailedToCheckDestination, err)
		}
		return nil, u.checkOverwrite(ctx, dst, found)
	}

	if u.overwrite {
		found, err := exists(dst)
		if err != nil {
			u.log.ErrorContext(ctx, "failed to check destination", logger.Step("destination"), logger.Error(err))
			return nil, err
		}
		return nil, u.checkOverwrite(ctx, dst, found)
	}

	res, err := reserve(dst)
	if errors.Is(err, ErrOverwriteDenied) {
		return nil, u.checkOverwrite(ctx, dst, true)
	}
	if err != nil {
		u.log.ErrorContext(ctx, "failed to check destination", logger.Step("destination"), logger.Error(err))
		return nil, err
	}
	u.log.InfoContext(ctx, "destination reserved", logger.Step("destination"), slog.String("path", dst))
	return res, nil
}

func (u *Uploader) checkOverwrite(ctx context.Context, dst string, found bool) error {
	switch {
	case !found:
		u.log.InfoContext(ctx, "destination is free", logger.Step("destination"), slog.String("path", dst))
		return nil
	case u.overwrite:
		u.log.WarnContext(ctx, "existing file will be overwritten", logger.Step("destination"), slog.String("path", dst))
		return nil
	default:
		u.log.ErrorContext(ctx, "file already exists and overwriting is disabled", logger.Step("destination"), slog.String("path", dst))
		return fmt.Errorf("%w: %s", ErrOverwriteDenied, dst)
	}
}
