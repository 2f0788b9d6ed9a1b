package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Run the layout HTTP API.

Endpoints:
  GET  /healthz     liveness and build version
  POST /v1/layout   {"graph": {...} | "flow": {...}, "options": {...}, "format": "json"|"dot"}

Set [cache] redis_url in the config file to share cached layouts between
replicas. The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") || cfg.Server.Addr == "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
			}

			printSuccess("Serving layout API")
			printKeyValue("address", ln.Addr().String())
			printKeyValue("cache", cacheBackend(cfg, noCache))
			printNewline()

			srv := server.New(server.Config{Runner: runner, Logger: c.Logger})
			return srv.Serve(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
