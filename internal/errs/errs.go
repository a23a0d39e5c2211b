// Package errs defines the sentinel error kinds shared across the
// runtime (spec §7) and a StepError wrapper that carries which
// component/phase produced them, mirroring the teacher's agent.LoopError.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// The six error kinds named in spec §7. Components wrap one of these
// with fmt.Errorf("...: %w", ErrX) so callers can errors.Is against the
// kind regardless of which component raised it.
var (
	// ErrTimeout indicates an external call exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrProviderError indicates a non-2xx or malformed provider response.
	ErrProviderError = errors.New("provider error")
	// ErrParseError indicates a JSON decode of an LLM reply failed.
	ErrParseError = errors.New("parse error")
	// ErrToolError indicates a tool execution raised.
	ErrToolError = errors.New("tool error")
	// ErrStateError indicates an agent was not Idle on entry to run.
	ErrStateError = errors.New("state error")
	// ErrConfigError indicates a missing required secret/configuration value.
	ErrConfigError = errors.New("config error")
)

// StepError wraps a sentinel Kind with the component and phase it
// occurred in, analogous to the teacher's agent.LoopError{Phase,
// Iteration, Cause}.
type StepError struct {
	Component string
	Phase     string
	Cause     error
}

func (e *StepError) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("%s[%s]: %v", e.Component, e.Phase, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Component, e.Cause)
}

func (e *StepError) Unwrap() error { return e.Cause }

// Wrap builds a StepError, attributing cause to component/phase.
func Wrap(component, phase string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StepError{Component: component, Phase: phase, Cause: cause}
}

// ClassifyProviderError labels a raw transport/provider error with one
// of the two sentinel kinds spec §4.1's retry policy distinguishes
// between: ErrProviderError for authentication and malformed-schema
// failures (non-retryable), ErrTimeout for everything else
// (retryable). component is prefixed into the message so the caller
// doesn't need to wrap it again.
func ClassifyProviderError(component string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid_api_key") ||
		strings.Contains(msg, "invalid schema") || strings.Contains(msg, "401") {
		return fmt.Errorf("%s: %w: %v", component, ErrProviderError, err)
	}
	return fmt.Errorf("%s: %w: %v", component, ErrTimeout, err)
}
