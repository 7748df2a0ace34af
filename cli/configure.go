package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RussellBTech/RewatchTranscriptFetcher/config"
)

func NewConfigureCmd(deps *Dependencies) *cobra.Command {
	var path, subdomain, timezone, outputs string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save the subdomain and other non-secret settings",
		Long: "Save settings to the config file so later fetches need only the dates.\n" +
			"Only the flags given here change the file; other values already in it are kept.\n" +
			"The API key is never saved; keep it in REWATCH_API_KEY or a .env file.\n" +
			"Without --config, fetch reads config/$CONFIG_ENV/config.yaml when it exists, then ~/.config/rewatch/config.yaml.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultPath()
			}
			if path == "" {
				return fmt.Errorf("no config path: pass --path")
			}

			c, err := config.ReadFile(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("subdomain") {
				c.Rewatch.Subdomain = subdomain
			}
			if cmd.Flags().Changed("timezone") {
				c.Rewatch.Timezone = timezone
				if _, err := c.Location(); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("outputs") {
				c.Paths.Outputs = outputs
			}
			if err := config.Save(path, c); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings saved: %s\n", path)

			if active := config.Resolve(); active != "" && !samePath(active, path) {
				fmt.Fprintf(cmd.OutOrStdout(), "Note: %s is read first; pass --config %s to use these settings\n", active, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "config file to write (default ~/.config/rewatch/config.yaml)")
	cmd.Flags().StringVar(&subdomain, "subdomain", "", "Rewatch channel subdomain")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for date ranges")
	cmd.Flags().StringVar(&outputs, "outputs", "", "directory for reports")

	return cmd
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}
