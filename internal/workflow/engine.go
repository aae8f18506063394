// Package workflow implements the interactive workflow engine: fixed
// ordered step lists threading a typed accumulator forward, with explicit
// suspend/resume at confirmation checkpoints. Run state is durable; a
// suspended run is recoverable on a different process instance.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a workflow run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSuspended Status = "suspended"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is the durable record of one workflow execution. State holds the
// input to the step at StepIndex while the run is live, and the final
// output once completed. Everything needed to resume lives here: the
// engine keeps no in-memory continuation.
type Run struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflow_id"`
	StepIndex      int             `json:"step_index"`
	Status         Status          `json:"status"`
	State          json.RawMessage `json:"state,omitempty"`
	SuspendPayload json.RawMessage `json:"suspend_payload,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RunStore persists run records. GetRun returns *UnknownRunError for an
// id it has never seen.
type RunStore interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	UpdateRun(ctx context.Context, run *Run) error
}

// errSuspended signals that a step requested suspension. It never escapes
// the engine.
var errSuspended = errors.New("workflow: step suspended")

// StepContext is a step's view of its run: the step input, the resume
// input when re-entered after a suspension, and the suspend escape hatch.
type StepContext struct {
	state          json.RawMessage
	resume         json.RawMessage
	suspendPayload json.RawMessage
}

// Bind unmarshals the step's input into v.
func (sc *StepContext) Bind(v any) error {
	if len(sc.state) == 0 {
		return &ValidationError{Detail: "step has no input"}
	}
	if err := json.Unmarshal(sc.state, v); err != nil {
		return &ValidationError{Detail: fmt.Sprintf("step input does not match contract: %v", err)}
	}
	return nil
}

// Resumed reports whether this invocation re-enters the step after a
// suspension.
func (sc *StepContext) Resumed() bool {
	return len(sc.resume) > 0
}

// BindResume unmarshals the resume input into v.
func (sc *StepContext) BindResume(v any) error {
	if !sc.Resumed() {
		return &ValidationError{Detail: "step was not resumed"}
	}
	if err := json.Unmarshal(sc.resume, v); err != nil {
		return &ValidationError{Detail: fmt.Sprintf("resume input does not match contract: %v", err)}
	}
	return nil
}

// Suspend halts the run and hands payload back to the driving caller.
// Steps call it as `return nil, sc.Suspend(payload)`.
func (sc *StepContext) Suspend(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize suspend payload: %w", err)
	}
	sc.suspendPayload = data
	return errSuspended
}

// Step is one named stage of a workflow. ValidateResume, when set, vets
// resume input before the step is re-entered.
type Step struct {
	Name           string
	Run            func(ctx context.Context, sc *StepContext) (any, error)
	ValidateResume func(raw json.RawMessage) error
}

// Definition is a workflow: a fixed, ordered list of steps plus an
// optional validator for the initial input.
type Definition struct {
	ID            string
	Steps         []Step
	ValidateInput func(raw json.RawMessage) error
}

// Engine executes registered workflow definitions against a run store.
// Steps within a run execute strictly sequentially; independent runs may
// execute concurrently with no cross-run coordination.
type Engine struct {
	store RunStore
	defs  map[string]*Definition
	log   *logrus.Logger
}

// NewEngine creates an engine over the given run store.
func NewEngine(store RunStore, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{store: store, defs: make(map[string]*Definition), log: log}
}

// Register adds a workflow definition, replacing any prior definition
// with the same id.
func (e *Engine) Register(def *Definition) {
	e.defs[def.ID] = def
}

// Definition returns a registered workflow by id.
func (e *Engine) Definition(id string) (*Definition, bool) {
	def, ok := e.defs[id]
	return def, ok
}

// Start validates input against the workflow's input contract, creates a
// run and executes it synchronously up to the first suspend point or
// completion.
func (e *Engine) Start(ctx context.Context, workflowID string, input json.RawMessage) (*Run, error) {
	def, ok := e.defs[workflowID]
	if !ok {
		return nil, &ValidationError{Detail: fmt.Sprintf("unknown workflow %q", workflowID)}
	}
	if def.ValidateInput != nil {
		if err := def.ValidateInput(input); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	run := &Run{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Status:     StatusRunning,
		State:      input,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	e.log.WithFields(logrus.Fields{"run_id": run.ID, "workflow": workflowID}).Info("run started")

	return e.advance(ctx, def, run, nil)
}

// Resume re-enters a suspended run at its suspended step with the resume
// input and continues forward. Runs not in Suspended state (including
// completed ones) fail with *UnknownRunError: completion is final, there
// is no double-persistence path.
func (e *Engine) Resume(ctx context.Context, runID string, resume json.RawMessage) (*Run, error) {
	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != StatusSuspended {
		return nil, &UnknownRunError{RunID: runID}
	}

	def, ok := e.defs[run.WorkflowID]
	if !ok {
		return nil, &ValidationError{Detail: fmt.Sprintf("run %s belongs to unregistered workflow %q", runID, run.WorkflowID)}
	}
	step := def.Steps[run.StepIndex]
	if step.ValidateResume != nil {
		if err := step.ValidateResume(resume); err != nil {
			return nil, err
		}
	}

	run.Status = StatusRunning
	run.SuspendPayload = nil
	e.log.WithFields(logrus.Fields{"run_id": run.ID, "step": step.Name}).Info("run resumed")

	return e.advance(ctx, def, run, resume)
}

// Get returns the stored run record.
func (e *Engine) Get(ctx context.Context, runID string) (*Run, error) {
	return e.store.GetRun(ctx, runID)
}

// advance executes steps from run.StepIndex forward until suspension,
// failure or completion. The resume input reaches only the first step
// executed; subsequent steps see a fresh context.
func (e *Engine) advance(ctx context.Context, def *Definition, run *Run, resume json.RawMessage) (*Run, error) {
	for run.StepIndex < len(def.Steps) {
		step := def.Steps[run.StepIndex]
		sc := &StepContext{state: run.State, resume: resume}
		resume = nil

		out, err := step.Run(ctx, sc)
		if errors.Is(err, errSuspended) {
			run.Status = StatusSuspended
			run.SuspendPayload = sc.suspendPayload
			if perr := e.persist(ctx, run); perr != nil {
				return nil, perr
			}
			e.log.WithFields(logrus.Fields{"run_id": run.ID, "step": step.Name}).Info("run suspended")
			return run, nil
		}
		if err != nil {
			return e.fail(ctx, run, step.Name, err)
		}

		state, err := json.Marshal(out)
		if err != nil {
			return e.fail(ctx, run, step.Name, fmt.Errorf("failed to serialize step output: %w", err))
		}
		run.State = state
		run.StepIndex++
		if perr := e.persist(ctx, run); perr != nil {
			return nil, perr
		}
	}

	run.Status = StatusCompleted
	if perr := e.persist(ctx, run); perr != nil {
		return nil, perr
	}
	e.log.WithFields(logrus.Fields{"run_id": run.ID, "workflow": run.WorkflowID}).Info("run completed")
	return run, nil
}

func (e *Engine) fail(ctx context.Context, run *Run, stepName string, cause error) (*Run, error) {
	run.Status = StatusFailed
	run.ErrorMessage = cause.Error()
	if perr := e.persist(ctx, run); perr != nil {
		return nil, perr
	}
	e.log.WithFields(logrus.Fields{"run_id": run.ID, "step": stepName}).WithError(cause).Error("run failed")
	return run, &ExecutionError{Step: stepName, Cause: cause}
}

func (e *Engine) persist(ctx context.Context, run *Run) error {
	run.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to persist run %s: %w", run.ID, err)
	}
	return nil
}
