package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/X-Luffy/Law-Agent/internal/config"
	"github.com/X-Luffy/Law-Agent/internal/logging"
)

// runAsk loads configuration, builds the runtime, and drives a single
// Flow.Execute call, printing status_callback transitions to stderr
// when verbose is set (spec §4.11).
func runAsk(cmd *cobra.Command, configPath, sessionID, question string, verbose bool) error {
	logger := logging.New(slog.LevelWarn, "text")
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rt, err := buildRuntime(cfg)
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() { _ = rt.shutdown() }()

	out := cmd.OutOrStdout()
	var status func(stage, detail, state string)
	if verbose {
		status = func(stage, detail, state string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s %s\n", stage, state, detail)
		}
	}

	ctx := logging.WithLogger(cmd.Context(), logger)
	answer := rt.flow.Execute(ctx, question, status, sessionID)
	fmt.Fprintln(out, answer)
	return nil
}
