package main

import (
	"github.com/spf13/cobra"
)

// buildServeCmd creates the "serve" command that starts the HTTP API
// and /metrics endpoint.
func buildServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Law-Agent HTTP API and metrics server",
		Long: `Start the Law-Agent HTTP server, exposing:

  POST /v1/ask     submit a question, get back the specialist's answer
  GET  /healthz    liveness probe
  GET  /metrics    Prometheus metrics

Graceful shutdown is handled on SIGINT/SIGTERM.`,
		Example: `  lawagent serve --config lawagent.yaml
  lawagent serve --addr :8080 --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, addr, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}
