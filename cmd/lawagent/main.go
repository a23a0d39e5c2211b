// Command lawagent is the CLI entry point for the multi-agent legal
// consultation runtime (spec §1 OVERVIEW).
//
// # Basic Usage
//
// Start the server:
//
//	lawagent serve --config lawagent.yaml
//
// Ask a one-shot question:
//
//	lawagent ask "经济补偿金怎么计算？"
//
// Validate configuration, credentials, and writable paths (no network
// calls):
//
//	lawagent doctor --config lawagent.yaml
//
// # Environment Variables
//
//   - LLM_API_KEY / LLM_BASE_URL: OpenAI-compatible chat provider
//   - EMBEDDING_API_KEY / EMBEDDING_BASE_URL: embedding provider (falls
//     back to the LLM provider's credentials when unset)
//   - BOCHA_API_KEY / BOCHA_ENDPOINT: web_search tool
//   - WEATHER_API_KEY / WEATHER_ENDPOINT: weather tool
//   - OTEL_EXPORTER_OTLP_ENDPOINT: tracing collector (tracing disabled
//     when unset)
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during release builds.
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with every subcommand attached.
// Separated from main() so tests can invoke it directly.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lawagent",
		Short: "Law-Agent - multi-agent legal consultation runtime",
		Long: `Law-Agent routes a user's question to a domain-specialist legal agent,
which plans, researches via tool-calling, self-critiques its answer, and
optionally re-searches before responding.

Domains: labor, family, contract, corporate, criminal, procedural, non_legal`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildAskCmd(),
		buildDoctorCmd(),
	)
	return rootCmd
}
