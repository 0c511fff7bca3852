package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"volumescope/internal/config"
	"volumescope/internal/server"
)

// runServer is replaced in tests to capture the resolved config
var runServer = server.Run

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and dashboard",
		Long: heredoc.Doc(`
			Serve the scan API, the live feed and the dashboard bundle.

			Endpoints:
			  GET /api/scan?path=<dir>    sizes of the immediate subdirectories of <dir>
			  GET /api/volume?path=<dir>  capacity of the filesystem holding <dir>
			  GET /api/health             liveness
			  GET /ws                     live feed of completed scans
			  GET /metrics                Prometheus metrics
		`),
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd, map[string]string{
				config.KeyPort:            "port",
				config.KeyHost:            "host",
				config.KeyScanRoot:        "root",
				config.KeyStaticDir:       "static",
				config.KeyScanConcurrency: "concurrency",
			})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 0, "Listen port (env PORT, default 3000)")
	flags.String("host", "", "Listen address (env HOST, default 0.0.0.0)")
	flags.String("root", "", "Default scan root (env SCAN_ROOT, default /data)")
	flags.String("static", "", "Dashboard bundle directory (env STATIC_DIR, default ./build)")
	flags.Int("concurrency", 0, "Folders sized in parallel (env SCAN_CONCURRENCY, 0 = auto)")

	return cmd
}

// bindFlags binds the running command's flags to viper keys. Called from
// PreRunE so only that command's flags are bound; viper keeps one flag per key
// and serve and scan both own --concurrency. An unset flag falls through to
// the environment and defaults.
func bindFlags(v *viper.Viper, cmd *cobra.Command, flags map[string]string) error {
	for key, name := range flags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}
