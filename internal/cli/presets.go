package cli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/uploadkit/pkg/config"
	"github.com/dmitrymomot/uploadkit/pkg/mimepolicy"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

func newPresetsCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "presets [name...]",
		Short: "List MIME type presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				var cfg upload.Config
				if err := config.Load(&cfg, root.envFiles...); err != nil {
					return err
				}
				file = cfg.PresetsFile
			}

			var opts []mimepolicy.Option
			if file != "" {
				presets, err := mimepolicy.LoadPresetsFile(file)
				if err != nil {
					return err
				}
				opts = append(opts, mimepolicy.WithPresets(presets))
			}
			policy := mimepolicy.New(opts...)

			names := args
			if len(names) == 0 {
				names = policy.Presets()
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Preset", "MIME types"})
			table.SetAutoWrapText(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.SetColumnSeparator("")
			table.SetCenterSeparator("")
			table.SetRowSeparator("")
			table.SetHeaderLine(false)

			for _, name := range names {
				members, ok := policy.Members(name)
				if !ok {
					return fmt.Errorf("%w: %q", mimepolicy.ErrUnknownPreset, name)
				}
				table.Append([]string{name, strings.Join(members, ", ")})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "presets", "", "YAML file with additional presets (default: UPLOAD_PRESETS_FILE)")
	return cmd
}
