package workflow

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed step input or resume input. Surfaced
// immediately to the caller, never retried.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Detail)
}

// UnknownRunError reports a resume request for a run that does not exist
// or is not suspended. The caller must restart.
type UnknownRunError struct {
	RunID string
}

func (e *UnknownRunError) Error() string {
	return fmt.Sprintf("no suspended run with id %q", e.RunID)
}

// ExecutionError wraps a step failure with the step that raised it. The
// cause is reachable through errors.As/Is.
type ExecutionError struct {
	Step  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// KpiNotFoundError carries the list of available KPI names to aid
// correction.
type KpiNotFoundError struct {
	Name      string
	Available []string
}

func (e *KpiNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no KPI named %q; no KPIs are defined yet", e.Name)
	}
	return fmt.Sprintf("no KPI named %q; available: %s", e.Name, strings.Join(e.Available, ", "))
}

// CannotAnswerError reports that the generation service declined the
// request, with its stated reason.
type CannotAnswerError struct {
	Reason string
}

func (e *CannotAnswerError) Error() string {
	return fmt.Sprintf("cannot answer: %s", e.Reason)
}
