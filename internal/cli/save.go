package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/uploadkit/pkg/auditlog"
	"github.com/dmitrymomot/uploadkit/pkg/config"
	"github.com/dmitrymomot/uploadkit/pkg/redis"
	"github.com/dmitrymomot/uploadkit/pkg/transfer"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

type saveOptions struct {
	name         string
	mimeType     string
	destination  string
	create       bool
	filename     string
	autoFilename bool
	maxSize      string
	hostMaxSize  string
	allow        []string
	presets      string
	overwrite    bool
	transfer     string
	jsonOutput   bool
	redis        bool
}

func newSaveCmd(root *rootOptions) *cobra.Command {
	opts := &saveOptions{}

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Run a local file through the upload pipeline",
		Long: `Run a local file through the upload pipeline as if it had just been uploaded.

Settings come from UPLOAD_* environment variables and are overridden by flags.
The file is copied unless --transfer says otherwise.`,
		Example: `  uploader save ./photo.jpg --dest ./media --allow image --max-size 2M
  uploader save ./report.pdf --filename "report.%s" --overwrite --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "Original client filename (default: base name of <file>)")
	f.StringVar(&opts.mimeType, "mime", "", "Declared MIME type (default: guessed from the extension)")
	f.StringVarP(&opts.destination, "dest", "d", "", "Destination directory")
	f.BoolVar(&opts.create, "create", false, "Create the destination directory if missing")
	f.StringVar(&opts.filename, "filename", "", `Stored filename, "%s" is replaced by the original extension`)
	f.BoolVar(&opts.autoFilename, "auto", false, "Generate a unique filename")
	f.StringVar(&opts.maxSize, "max-size", "", `Maximum file size, e.g. "512K" or "10M"`)
	f.StringVar(&opts.hostMaxSize, "host-max-size", "", "Host maximum upload size")
	f.StringSliceVar(&opts.allow, "allow", nil, "Allowed MIME types or presets (text, image, document, video)")
	f.StringVar(&opts.presets, "presets", "", "YAML file with additional MIME presets")
	f.BoolVar(&opts.overwrite, "overwrite", false, "Replace an existing file")
	f.StringVar(&opts.transfer, "transfer", transfer.NameCopy, "Transfer: move, copy or s3")
	f.BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	f.BoolVar(&opts.redis, "redis", false, "Record the result in Redis (REDIS_* settings)")
	return cmd
}

func runSave(cmd *cobra.Command, root *rootOptions, opts *saveOptions, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := root.newLogger(cmd)

	var cfg upload.Config
	if err := config.Load(&cfg, root.envFiles...); err != nil {
		return err
	}
	opts.apply(cmd, &cfg)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	name := opts.name
	if name == "" {
		name = filepath.Base(path)
	}
	declared := opts.mimeType
	if declared == "" {
		declared = mime.TypeByExtension(filepath.Ext(name))
	}
	if declared == "" {
		declared = "application/octet-stream"
	}

	files := upload.Files{
		cfg.Input: {
			Name:         name,
			TmpLocation:  path,
			DeclaredMIME: declared,
			Size:         info.Size(),
		},
	}

	uploadOpts := []upload.Option{upload.WithLogger(log)}
	if cfg.Transfer == transfer.NameS3 {
		t, err := newS3Transfer(ctx, root)
		if err != nil {
			return err
		}
		uploadOpts = append(uploadOpts, upload.WithTransfer(t))
	}
	if opts.redis {
		var rcfg redis.Config
		if err := config.Load(&rcfg, root.envFiles...); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, rcfg, redis.WithLogger(log))
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		uploadOpts = append(uploadOpts, upload.WithSink(upload.NewRedisSink(client,
			upload.WithSinkKey(rcfg.ResultsKey),
			upload.WithSinkMaxLen(rcfg.ResultsMaxLen),
		)))
	}

	u, err := upload.NewFromConfig(files, cfg, uploadOpts...)
	if err != nil {
		return err
	}

	result, saveErr := u.Save(ctx)
	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printResult(cmd.OutOrStdout(), result)
	}
	return saveErr
}

// apply copies explicitly set flags over the environment configuration.
func (o *saveOptions) apply(cmd *cobra.Command, cfg *upload.Config) {
	f := cmd.Flags()
	if f.Changed("dest") {
		cfg.Destination = o.destination
	}
	if f.Changed("create") {
		cfg.CreateDestination = o.create
	}
	if f.Changed("filename") {
		cfg.Filename = o.filename
	}
	if f.Changed("auto") {
		cfg.AutoFilename = o.autoFilename
	}
	if f.Changed("max-size") {
		cfg.MaxFileSize = o.maxSize
	}
	if f.Changed("host-max-size") {
		cfg.HostMaxFileSize = o.hostMaxSize
	}
	if f.Changed("allow") {
		cfg.AllowedMIMETypes = o.allow
	}
	if f.Changed("presets") {
		cfg.PresetsFile = o.presets
	}
	if f.Changed("overwrite") {
		cfg.Overwrite = o.overwrite
	}
	// Copy by default so the source file survives, unless the environment picks a transfer.
	if f.Changed("transfer") || !envSet("UPLOAD_TRANSFER") {
		cfg.Transfer = o.transfer
	}
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func printResult(w io.Writer, r upload.Result) {
	status := "rejected"
	if r.Status {
		status = "saved"
	}
	fmt.Fprintf(w, "%s: %s -> %s (%s, %s)\n", status, r.Original, r.Destination, r.MIME, r.SizeFormatted)
	printLog(w, r.Log)
}

func printLog(w io.Writer, entries []auditlog.Entry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Level", "Message", "Attributes"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")

	for _, e := range entries {
		attrs := strings.TrimSpace(strings.TrimPrefix(e.String(), e.Message))
		table.Append([]string{
			e.Time.Format("15:04:05.000"),
			e.Level.String(),
			e.Message,
			attrs,
		})
	}
	table.Render()
}
