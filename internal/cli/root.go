// Package cli implements the uploader command line: save a local file through
// the upload pipeline, serve the HTTP endpoint or list MIME presets.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/uploadkit/internal/server"
	"github.com/dmitrymomot/uploadkit/pkg/logger"
)

const serviceName = "uploader"

type rootOptions struct {
	envFiles  []string
	env       string
	logLevel  string
	logFormat string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "uploader",
		Short:         "Validate and persist uploaded files",
		Long:          "Validate uploaded files against MIME, size, filename and overwrite rules, persist them and keep an audit log of every decision.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch logger.Format(opts.logFormat) {
			case logger.FormatJSON, logger.FormatText:
				return nil
			default:
				return fmt.Errorf("invalid --log-format %q: must be %q or %q", opts.logFormat, logger.FormatJSON, logger.FormatText)
			}
		},
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Load environment variables from these files")
	cmd.PersistentFlags().StringVar(&opts.env, "env", os.Getenv("APP_ENV"), "Runtime environment: development or production (presets log level and format)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", string(logger.FormatText), "Log format: text or json")

	cmd.AddCommand(newSaveCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newPresetsCmd(opts))
	return cmd
}

// newLogger builds the process logger. With --env set, the environment
// preset decides level and format unless --log-level or --log-format is given.
func (o *rootOptions) newLogger(cmd *cobra.Command) *slog.Logger {
	opts := make([]logger.Option, 0, 5)
	if o.env != "" {
		opts = append(opts, logger.WithEnvironment(o.env, serviceName))
	}
	if o.env == "" || flagChanged(cmd, "log-level") {
		opts = append(opts, logger.WithLevelName(o.logLevel))
	}
	if o.env == "" || flagChanged(cmd, "log-format") {
		opts = append(opts, logger.WithFormat(logger.Format(o.logFormat)))
	}
	opts = append(opts,
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithContextExtractors(server.RequestIDExtractor),
	)
	return logger.New(opts...)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}
