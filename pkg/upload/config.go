package upload

import (
	"fmt"

	"github.com/dmitrymomot/uploadkit/pkg/mimepolicy"
	"github.com/dmitrymomot/uploadkit/pkg/transfer"
)

// Config describes an Uploader through environment variables. Load it with config.Load.
type Config struct {
	Input             string   `env:"UPLOAD_INPUT" envDefault:"file" validate:"required"`                        // Input is the form field holding the file.
	Destination       string   `env:"UPLOAD_DESTINATION" envDefault:"."`                                         // Destination is the directory files are written to.
	CreateDestination bool     `env:"UPLOAD_CREATE_DESTINATION" envDefault:"false"`                              // CreateDestination creates missing destination directories.
	Filename          string   `env:"UPLOAD_FILENAME"`                                                           // Filename is a pattern where "%s" is replaced by the original extension.
	AutoFilename      bool     `env:"UPLOAD_AUTO_FILENAME" envDefault:"false"`                                   // AutoFilename generates a unique filename. Overrides Filename.
	MaxFileSize       string   `env:"UPLOAD_MAX_FILE_SIZE"`                                                      // MaxFileSize such as "512K" or "10M". Empty means unlimited.
	HostMaxFileSize   string   `env:"UPLOAD_HOST_MAX_FILE_SIZE"`                                                 // HostMaxFileSize is the largest upload the host accepts.
	AllowedMIMETypes  []string `env:"UPLOAD_ALLOWED_MIME_TYPES" envSeparator:","`                                // AllowedMIMETypes lists MIME types and preset names.
	PresetsFile       string   `env:"UPLOAD_PRESETS_FILE"`                                                       // PresetsFile is a YAML file with additional presets.
	Overwrite         bool     `env:"UPLOAD_OVERWRITE" envDefault:"false"`                                       // Overwrite replaces existing files.
	Transfer          string   `env:"UPLOAD_TRANSFER" envDefault:"move" validate:"omitempty,oneof=move copy s3"` // Transfer is "move", "copy" or "s3".
}

// NewFromConfig builds an Uploader from cfg and applies every configured setter.
// The "s3" transfer needs the client supplied through WithTransfer.
func NewFromConfig(files Files, cfg Config, opts ...Option) (*Uploader, error) {
	if cfg.PresetsFile != "" {
		presets, err := mimepolicy.LoadPresetsFile(cfg.PresetsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigurationRejected, err)
		}
		opts = append([]Option{WithPolicy(mimepolicy.New(mimepolicy.WithPresets(presets)))}, opts...)
	}
	if cfg.HostMaxFileSize != "" {
		limit := cfg.HostMaxFileSize
		opts = append([]Option{WithHostLimit(func() string { return limit })}, opts...)
	}

	u := New(files, opts...)

	if !u.transferIsSet {
		switch cfg.Transfer {
		case "", transfer.NameMove:
		case transfer.NameS3:
			return nil, fmt.Errorf("%w: %w: s3 transfer requires a client", ErrConfigurationRejected, ErrNilTransfer)
		default:
			t, err := transfer.ByName(cfg.Transfer)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrConfigurationRejected, err)
			}
			if err := u.SetTransfer(t); err != nil {
				return nil, err
			}
		}
	}

	if err := u.SetInput(cfg.Input); err != nil {
		return nil, err
	}
	if cfg.Destination != "" {
		if err := u.SetDestination(cfg.Destination, cfg.CreateDestination); err != nil {
			return nil, err
		}
	}
	switch {
	case cfg.AutoFilename:
		u.SetAutoFilename()
	case cfg.Filename != "":
		if err := u.SetFilename(cfg.Filename); err != nil {
			return nil, err
		}
	}
	if cfg.MaxFileSize != "" {
		if err := u.SetMaxFileSize(cfg.MaxFileSize); err != nil {
			return nil, err
		}
	}
	if len(cfg.AllowedMIMETypes) > 0 {
		if err := u.AllowMIMETypes(cfg.AllowedMIMETypes); err != nil {
			return nil, err
		}
	}
	if cfg.Overwrite {
		u.AllowOverwriting()
	}
	return u, nil
}
