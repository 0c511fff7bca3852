package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"volumescope/internal/config"
	"volumescope/internal/services"
)

func newScanCommand(v *viper.Viper) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Size the top-level folders of a path once and print the result",
		Long: heredoc.Doc(`
			Size every immediate subdirectory of path (default: the configured scan
			root) and print the result. Files directly under path are not counted.

			Output is a table on a terminal and JSON otherwise; --output forces one.
		`),
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd, map[string]string{
				config.KeyScanConcurrency: "concurrency",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = "json"
				if f, ok := cmd.OutOrStdout().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
					output = "table"
				}
			}
			if !slices.Contains([]string{"table", "json"}, output) {
				return fmt.Errorf("invalid output format %q: must be table or json", output)
			}

			concurrency := v.GetInt(config.KeyScanConcurrency)
			if concurrency <= 0 {
				concurrency = config.DefaultScanConcurrency()
			}
			scans := services.NewScanService(services.ScanOptions{
				DefaultRoot: v.GetString(config.KeyScanRoot),
				Concurrency: concurrency,
				WalkWorkers: v.GetInt(config.KeyWalkWorkers),
			})

			var path string
			if len(args) == 1 {
				path = args[0]
			}

			result, err := scans.Scan(path)
			if err != nil {
				return fmt.Errorf("unable to scan directory: %w", err)
			}

			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeTable(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table or json")
	cmd.Flags().Int("concurrency", 0, "Folders sized in parallel (0 = auto)")

	return cmd
}
