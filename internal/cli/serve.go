package cli

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/neuronpath/internal/server"
	"github.com/matzehuels/neuronpath/pkg/observability/prom"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

The API offers the same conversions as the CLI under /v1 and shares its
cache configuration. Prometheus metrics are served at /metrics and a
liveness probe at /healthz. The server shuts down gracefully on SIGINT or
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var metrics *prom.Metrics
			if !noMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				metrics = prom.New(reg)
				metrics.Install()
			}

			srv := server.New(runner, metricsHandler(metrics), c.Logger, server.Config{
				Addr:         cfg.Addr,
				ReadTimeout:  cfg.ReadTimeout.Duration,
				WriteTimeout: cfg.WriteTimeout.Duration,
				MaxBodyBytes: cfg.MaxBodyBytes,
				Defaults:     c.pipelineOptions(),
			})
			printInfo("Serving on %s", StyleHighlight.Render(cfg.Addr))
			printDetail("cache: %s", c.Config.Cache.Backend)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not collect or serve Prometheus metrics")

	return cmd
}

func metricsHandler(m *prom.Metrics) http.Handler {
	if m == nil {
		return nil
	}
	return m.Handler()
}
