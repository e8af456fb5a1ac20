package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrymomot/uploadkit/pkg/auditlog"
	"github.com/dmitrymomot/uploadkit/pkg/destination"
	"github.com/dmitrymomot/uploadkit/pkg/filesize"
	"github.com/dmitrymomot/uploadkit/pkg/logger"
	"github.com/dmitrymomot/uploadkit/pkg/mimepolicy"
	"github.com/dmitrymomot/uploadkit/pkg/transfer"
)

// Uploader validates and persists one incoming file. Create it with New.
type Uploader struct {
	files     Files
	input     string
	filename  string
	destDir   string
	dirPerm   fs.FileMode
	maxSize   int64
	overwrite bool

	policy   *mimepolicy.Policy
	before   Callback
	after    Callback
	transfer Transferer
	sink     Sink

	hostLimit     func() string
	hostOnce      sync.Once
	hostCeiling   int64
	now           func() time.Time
	logger        *slog.Logger
	audit         *auditlog.Recorder
	log           *slog.Logger
	result        Result
	saved         bool
	transferIsSet bool
}

// Option configures an Uploader at construction.
type Option func(*Uploader)

// WithLogger forwards audit entries to l. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(u *Uploader) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithTransfer replaces the default transfer.Move. Nil is ignored.
func WithTransfer(t Transferer) Option {
	return func(u *Uploader) {
		if t != nil {
			u.transfer = t
			u.transferIsSet = true
		}
	}
}

// WithHostLimit supplies the host's maximum upload size, e.g. "8M".
// It is queried at most once, by the first SetMaxFileSize call.
// An empty or zero value means there is no ceiling.
func WithHostLimit(fn func() string) Option {
	return func(u *Uploader) { u.hostLimit = fn }
}

// WithPolicy uses p as the mime policy, for example to share custom presets.
func WithPolicy(p *mimepolicy.Policy) Option {
	return func(u *Uploader) {
		if p != nil {
			u.policy = p
		}
	}
}

// WithSink registers a sink that receives the result once Save finishes.
func WithSink(s Sink) Option {
	return func(u *Uploader) { u.sink = s }
}

// WithClock overrides time.Now, used for auto filenames.
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) {
		if now != nil {
			u.now = now
		}
	}
}

// WithDirPerm sets the mode of directories created by SetDestination.
func WithDirPerm(perm fs.FileMode) Option {
	return func(u *Uploader) { u.dirPerm = perm }
}

// New returns an Uploader bound to files. The destination defaults to the
// current working directory.
func New(files Files, opts ...Option) *Uploader {
	u := &Uploader{
		files:    files,
		destDir:  defaultDestination(),
		dirPerm:  destination.DefaultPerm,
		policy:   mimepolicy.New(),
		transfer: transfer.Move(),
		now:      time.Now,
		logger:   logger.Nop(),
		result:   Result{SizeFormatted: filesize.Format(0)},
	}
	for _, opt := range opts {
		opt(u)
	}

	u.audit = auditlog.NewRecorder(auditlog.WithNext(u.logger.Handler()))
	u.log = slog.New(u.audit).With(logger.Component("upload"))
	return u
}

func defaultDestination() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return filepath.Clean(wd) + string(filepath.Separator)
}

// SetInput binds the uploader to the incoming file under name.
func (u *Uploader) SetInput(name string) error {
	if name == "" {
		return u.reject("invalid input", ErrInvalidInput)
	}
	u.input = name
	u.log.Info("capture set", logger.Input(name))
	return nil
}

// SetFilename sets the stored filename. Every "%s" in name is replaced by the
// original file extension during Save.
func (u *Uploader) SetFilename(name string) error {
	if !isValidFilename(name) {
		return u.reject("invalid filename", fmt.Errorf("%w: %q", ErrInvalidFilename, name))
	}
	u.filename = name
	u.log.Info("filename set", logger.Filename(name))
	return nil
}

// SetAutoFilename generates a unique "<hash><timestamp>.%s" filename pattern.
func (u *Uploader) SetAutoFilename() {
	u.log.Info("automatic filename enabled")
	u.filename = AutoFilename(u.now())
	u.log.Info("filename set", logger.Filename(u.filename))
}

// SetMaxFileSize limits the accepted size. limit is parsed with filesize.ParseStrict
// ("512K", "10M", "1048576"). A limit above the host maximum upload size is
// rejected and the previous limit is kept.
func (u *Uploader) SetMaxFileSize(limit string) error {
	size, err := filesize.ParseStrict(limit)
	if err != nil {
		return u.reject("invalid maximum file size", err)
	}

	if ceiling := u.hostMaxSize(); ceiling > 0 {
		u.log.Info("host maximum upload size",
			slog.String("limit", filesize.Format(ceiling)),
			slog.Int64("bytes", ceiling),
		)
		if ceiling < size {
			u.log.Warn("host configuration allows a smaller maximum size",
				slog.String("host_limit", filesize.Format(ceiling)),
				slog.String("requested", filesize.Format(size)),
			)
			return fmt.Errorf("%w: %w", ErrConfigurationRejected, ErrLimitExceedsHost)
		}
	}

	u.maxSize = size
	u.log.Info("maximum allowed size set",
		slog.String("limit", filesize.Format(size)),
		slog.Int64("bytes", size),
	)
	return nil
}

// AllowMIMEType adds a MIME type or a preset ("text", "image", "document",
// "video") to the allow-list.
func (u *Uploader) AllowMIMEType(value string) error {
	mimes, err := u.policy.Allow(value)
	if err != nil {
		return u.reject("invalid MIME type", err)
	}
	for _, m := range mimes {
		u.log.Info("mime type enabled", logger.MIMEType(m))
	}
	return nil
}

// AllowMIMETypes applies AllowMIMEType to every value. An empty list is rejected.
func (u *Uploader) AllowMIMETypes(values []string) error {
	if len(values) == 0 {
		return u.reject("empty MIME type list", mimepolicy.ErrEmptyList)
	}
	var errs []error
	for _, v := range values {
		if err := u.AllowMIMEType(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearAllowedMIMETypes empties the allow-list, allowing every MIME type again.
func (u *Uploader) ClearAllowedMIMETypes() {
	u.policy.Clear()
	u.log.Info("allowed mime types cleared")
}

// SetDestination sets the directory files are written to. With create set,
// missing directories are created.
func (u *Uploader) SetDestination(path string, create bool) error {
	dir, err := destination.Resolve(path,
		destination.WithCreate(create),
		destination.WithPerm(u.dirPerm),
	)
	if err != nil {
		return u.reject("invalid destination", err)
	}
	u.destDir = dir
	u.log.Info("destination set", logger.Destination(dir))
	return nil
}

// AllowOverwriting lets Save replace an existing file at the destination.
func (u *Uploader) AllowOverwriting() {
	u.overwrite = true
	u.log.Info("overwrite enabled")
}

// SetBeforeCallback registers the hook run before the MIME and size checks.
func (u *Uploader) SetBeforeCallback(cb Callback) error {
	if cb == nil {
		return u.reject("invalid before callback", ErrNilCallback)
	}
	u.before = cb
	return nil
}

// SetAfterCallback registers the hook run after the transfer.
func (u *Uploader) SetAfterCallback(cb Callback) error {
	if cb == nil {
		return u.reject("invalid after callback", ErrNilCallback)
	}
	u.after = cb
	return nil
}

// SetTransfer replaces the transfer used to persist the file.
func (u *Uploader) SetTransfer(t Transferer) error {
	if t == nil {
		return u.reject("invalid transfer", ErrNilTransfer)
	}
	u.transfer = t
	u.transferIsSet = true
	u.log.Info("transfer set", slog.String("transfer", transferName(t)))
	return nil
}

// Info returns a copy of the result record, including the audit log so far.
func (u *Uploader) Info() Result {
	r := u.result.clone()
	r.AllowedMIMETypes = u.policy.Allowed()
	r.Log = u.audit.Entries()
	return r
}

// Status reports whether the file was persisted.
func (u *Uploader) Status() bool {
	return u.result.Status
}

// Log returns the audit log entries recorded so far.
func (u *Uploader) Log() []auditlog.Entry {
	return u.audit.Entries()
}

// Destination returns the directory files are written to.
func (u *Uploader) Destination() string {
	return u.destDir
}

func (u *Uploader) hostMaxSize() int64 {
	u.hostOnce.Do(func() {
		if u.hostLimit != nil {
			u.hostCeiling = filesize.Parse(u.hostLimit())
		}
	})
	return u.hostCeiling
}

func (u *Uploader) reject(msg string, err error) error {
	u.log.Warn(msg, logger.Error(err))
	return fmt.Errorf("%w: %w", ErrConfigurationRejected, err)
}

func transferName(t Transferer) string {
	if s, ok := t.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", t)
}
