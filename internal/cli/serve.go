package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockdrop/pkg/api"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	onInvalid string
	cache     string
	workers   int
}

// serveCommand creates the serve command, which exposes the simulator over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator over HTTP",
		Long: `Serve the simulator over HTTP until interrupted.

Endpoints:
  GET  /healthz
  GET  /v1/shapes
  POST /v1/heights   text/plain lines or {"scenarios": [...]}
  POST /v1/board     {"scenario": "Q0,I2"}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Server.Addr = opts.addr
			}
			if flags.Changed("on-invalid") {
				cfg.OnInvalid = opts.onInvalid
			}
			if flags.Changed("cache") {
				cfg.Cache.Backend = opts.cache
			}
			if flags.Changed("workers") {
				cfg.Workers = opts.workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, closeCache := c.newRunner(ctx, cfg)
			defer closeCache()
			stopHooks := c.registerHooks(ctx, false)

			srv := api.New(runner, c.Logger)
			err = srv.ListenAndServe(ctx, api.Options{
				Addr:         cfg.Server.Addr,
				ReadTimeout:  cfg.Server.ReadTimeout.Duration,
				WriteTimeout: cfg.Server.WriteTimeout.Duration,
			})
			stopHooks(err)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.onInvalid, "on-invalid", "fail", "default malformed token handling: fail or skip")
	cmd.Flags().StringVar(&opts.cache, "cache", "none", "result cache backend: none, file or redis")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 1, "scenarios simulated concurrently per request")

	return cmd
}
