package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/X-Luffy/Law-Agent/internal/config"
	"github.com/X-Luffy/Law-Agent/internal/logging"
)

// runServe implements the serve command: build the runtime, mount the
// HTTP API, and block until a shutdown signal arrives.
func runServe(cmd *cobra.Command, configPath, addr string, debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level, "json")
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rt, err := buildRuntime(cfg)
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() {
		if err := rt.shutdown(); err != nil {
			logger.Warn("runtime shutdown error", "error", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/ask", handleAsk(rt, logger))

	server := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("law-agent http server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("shutdown signal received, draining in-flight requests")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("law-agent http server stopped")
	return nil
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// handleAsk adapts flow.Flow.Execute to a single JSON request/response
// HTTP handler; status callbacks are not streamed back to the caller
// here, only logged (spec §4.11's status_callback contract is satisfied
// by the CLI's "ask" command, which prints them to stderr under
// --verbose).
func handleAsk(rt *runtime, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			http.Error(w, "query is required", http.StatusBadRequest)
			return
		}

		ctx := logging.WithLogger(r.Context(), logger)
		status := func(stage, detail, state string) {
			logger.Debug("flow status", "stage", stage, "detail", detail, "state", state)
		}
		answer := rt.flow.Execute(ctx, req.Query, status, req.SessionID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(askResponse{Answer: answer})
	}
}
