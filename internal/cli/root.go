package cli

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"volumescope/internal/config"
	"volumescope/internal/logger"
)

// NewRootCommand builds the volumescope command tree. Each call gets its own
// viper instance so commands can be constructed repeatedly in tests.
func NewRootCommand(version string) *cobra.Command {
	v := viper.New()
	var envFile string

	root := &cobra.Command{
		Use:   "volumescope",
		Short: "Report disk usage per top-level folder of a volume",
		Long: heredoc.Doc(`
			volumescope measures how large each immediate subdirectory of a path is
			and serves the result to a browser dashboard.

			Settings come from flags, the environment (PORT, SCAN_ROOT, LOG_LEVEL, ...)
			and an optional .env file, in that order of precedence.
		`),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			config.SetDefaults(v)

			// only serve owns stdout for logs; scan prints its result there
			console := cmd.ErrOrStderr()
			if cmd.Name() == "serve" {
				console = cmd.OutOrStdout()
			}
			logger.Init(logger.Options{
				Level:   v.GetString(config.KeyLogLevel),
				File:    v.GetString(config.KeyLogFile),
				Console: console,
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")
	root.PersistentFlags().String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")
	_ = v.BindPFlag(config.KeyLogLevel, root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newServeCommand(v), newScanCommand(v))
	return root
}

// Execute runs the CLI
func Execute(version string) error {
	defer logger.Close()
	return NewRootCommand(version).Execute()
}
