package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/X-Luffy/Law-Agent/internal/config"
)

// doctorCheck is one pass/fail line in the doctor report.
type doctorCheck struct {
	name string
	err  error
}

// runDoctor loads cfg and runs a battery of static checks — no network
// calls are made, since doctor is meant to catch wiring mistakes (a
// missing API key, an unwritable output directory) before a deploy
// attempt burns a real LLM request.
func runDoctor(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	checks := []doctorCheck{
		{"llm api key configured", requireNonEmpty(cfg.LLM.APIKey, "LLM_API_KEY or llm.api_key")},
		{"embedding api key configured", requireNonEmpty(firstNonEmpty(cfg.Embedding.APIKey, cfg.LLM.APIKey), "EMBEDDING_API_KEY, LLM_API_KEY, or embedding.api_key")},
		{"tool output directory writable", checkWritableDir(cfg.Tools.OutputDir)},
		{"file_read root exists", checkDirExists(cfg.Tools.FileReadRoot)},
		{"vector db path writable", checkVectorDBPath(cfg.Memory.VectorDBPath)},
		{"web_search configured", requireNonEmpty(cfg.Tools.BochaAPIKey, "BOCHA_API_KEY (web_search will error at call time without it)")},
	}

	failed := 0
	for _, c := range checks {
		if c.err != nil {
			failed++
			fmt.Fprintf(out, "[FAIL] %s: %v\n", c.name, c.err)
		} else {
			fmt.Fprintf(out, "[ OK ] %s\n", c.name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("doctor found %d failing check(s)", failed)
	}
	fmt.Fprintln(out, "All checks passed.")
	return nil
}

func requireNonEmpty(value, hint string) error {
	if value == "" {
		return fmt.Errorf("not set (%s)", hint)
	}
	return nil
}

func checkWritableDir(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("cannot create: %w", err)
	}
	probe := path + "/.lawagent_doctor_probe"
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("cannot write: %w", err)
	}
	return os.Remove(probe)
}

func checkDirExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func checkVectorDBPath(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	return checkWritableDir(filepath.Dir(path))
}
