package main

import (
	"github.com/spf13/cobra"
)

// buildAskCmd creates the "ask" command for one-shot questions against
// the full Flow pipeline, printing status transitions as they happen.
func buildAskCmd() *cobra.Command {
	var (
		configPath string
		sessionID  string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a one-shot legal question",
		Args:  cobra.ExactArgs(1),
		Example: `  lawagent ask "员工被违法解雇可以要求多少赔偿？"
  lawagent ask --session-id demo-1 "劳动仲裁怎么申请？"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, configPath, sessionID, args[0], verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session ID for memory scoping (default: \"default\")")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print route/dispatch/critic status as they happen")

	return cmd
}
