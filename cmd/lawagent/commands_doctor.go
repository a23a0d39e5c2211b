package main

import (
	"github.com/spf13/cobra"
)

// buildDoctorCmd creates the "doctor" command for validating
// configuration, credentials, and writable paths before a deploy. It
// makes no network calls, so dependent services are not probed.
func buildDoctorCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, credentials, and writable paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	return cmd
}
