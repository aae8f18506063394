package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Value string `json:"value"`
}

func newTestEngine(t *testing.T, def *Definition) *Engine {
	t.Helper()
	engine := NewEngine(NewMemStore(), nil)
	engine.Register(def)
	return engine
}

func TestEngine_RunsStepsInOrderThreadingState(t *testing.T) {
	var order []string
	def := &Definition{
		ID: "echo",
		Steps: []Step{
			{Name: "first", Run: func(_ context.Context, sc *StepContext) (any, error) {
				order = append(order, "first")
				var in echoInput
				require.NoError(t, sc.Bind(&in))
				return echoInput{Value: in.Value + "+first"}, nil
			}},
			{Name: "second", Run: func(_ context.Context, sc *StepContext) (any, error) {
				order = append(order, "second")
				var in echoInput
				require.NoError(t, sc.Bind(&in))
				return echoInput{Value: in.Value + "+second"}, nil
			}},
		},
	}
	engine := newTestEngine(t, def)

	run, err := engine.Start(context.Background(), "echo", json.RawMessage(`{"value":"in"}`))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, []string{"first", "second"}, order)

	var out echoInput
	require.NoError(t, json.Unmarshal(run.State, &out))
	assert.Equal(t, "in+first+second", out.Value)
}

func TestEngine_UnknownWorkflowFailsValidation(t *testing.T) {
	engine := newTestEngine(t, &Definition{ID: "known"})

	_, err := engine.Start(context.Background(), "missing", json.RawMessage(`{}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestEngine_InputValidationRunsBeforeAnyStep(t *testing.T) {
	def := &Definition{
		ID: "strict",
		ValidateInput: func(json.RawMessage) error {
			return &ValidationError{Detail: "bad input"}
		},
		Steps: []Step{
			{Name: "never", Run: func(context.Context, *StepContext) (any, error) {
				t.Fatal("step must not run on invalid input")
				return nil, nil
			}},
		},
	}
	engine := newTestEngine(t, def)

	_, err := engine.Start(context.Background(), "strict", json.RawMessage(`{}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestEngine_SuspendAndResumeRoundTrip(t *testing.T) {
	def := &Definition{
		ID: "ask",
		Steps: []Step{
			{Name: "prepare", Run: func(_ context.Context, sc *StepContext) (any, error) {
				return echoInput{Value: "prepared"}, nil
			}},
			{Name: "confirm", Run: func(_ context.Context, sc *StepContext) (any, error) {
				var in echoInput
				require.NoError(t, sc.Bind(&in))
				if !sc.Resumed() {
					return nil, sc.Suspend(map[string]string{"question": "proceed with " + in.Value + "?"})
				}
				var answer echoInput
				require.NoError(t, sc.BindResume(&answer))
				return echoInput{Value: in.Value + "+" + answer.Value}, nil
			}},
		},
	}
	engine := newTestEngine(t, def)

	run, err := engine.Start(context.Background(), "ask", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, run.Status)
	assert.JSONEq(t, `{"question":"proceed with prepared?"}`, string(run.SuspendPayload))
	assert.Equal(t, 1, run.StepIndex, "suspended at the confirm step")

	resumed, err := engine.Resume(context.Background(), run.ID, json.RawMessage(`{"value":"yes"}`))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resumed.Status)
	assert.Empty(t, resumed.SuspendPayload)

	var out echoInput
	require.NoError(t, json.Unmarshal(resumed.State, &out))
	assert.Equal(t, "prepared+yes", out.Value)
}

func TestEngine_ResumeAfterCompletionFailsBothTimes(t *testing.T) {
	def := &Definition{
		ID: "oneshot",
		Steps: []Step{
			{Name: "confirm", Run: func(_ context.Context, sc *StepContext) (any, error) {
				if !sc.Resumed() {
					return nil, sc.Suspend("waiting")
				}
				return echoInput{Value: "done"}, nil
			}},
		},
	}
	engine := newTestEngine(t, def)

	run, err := engine.Start(context.Background(), "oneshot", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, run.Status)

	completed, err := engine.Resume(context.Background(), run.ID, json.RawMessage(`{"ok":true}`))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, completed.Status)

	var unknown *UnknownRunError
	for range 2 {
		_, err = engine.Resume(context.Background(), run.ID, json.RawMessage(`{"ok":true}`))
		require.True(t, errors.As(err, &unknown), "completed runs must reject resume, got %v", err)
	}
}

func TestEngine_ResumeUnknownRunID(t *testing.T) {
	engine := newTestEngine(t, &Definition{ID: "any"})

	_, err := engine.Resume(context.Background(), "nope", nil)
	var unknown *UnknownRunError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "nope", unknown.RunID)
}

func TestEngine_ValidateResumeRejectsBadInput(t *testing.T) {
	def := &Definition{
		ID: "guarded",
		Steps: []Step{
			{
				Name: "confirm",
				Run: func(_ context.Context, sc *StepContext) (any, error) {
					if !sc.Resumed() {
						return nil, sc.Suspend("waiting")
					}
					return echoInput{Value: "done"}, nil
				},
				ValidateResume: validateConfirm,
			},
		},
	}
	engine := newTestEngine(t, def)

	run, err := engine.Start(context.Background(), "guarded", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, run.Status)

	_, err = engine.Resume(context.Background(), run.ID, json.RawMessage(`not json`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	// the run stays suspended and remains resumable
	stored, err := engine.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, stored.Status)

	resumed, err := engine.Resume(context.Background(), run.ID, json.RawMessage(`{"confirmed":true}`))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resumed.Status)
}

func TestEngine_StepErrorFailsRunWithExecutionError(t *testing.T) {
	cause := &KpiNotFoundError{Name: "missing", Available: []string{"a", "b"}}
	def := &Definition{
		ID: "failing",
		Steps: []Step{
			{Name: "lookup", Run: func(context.Context, *StepContext) (any, error) {
				return nil, cause
			}},
		},
	}
	engine := newTestEngine(t, def)

	run, err := engine.Start(context.Background(), "failing", json.RawMessage(`{}`))
	require.Error(t, err)

	var execErr *ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "lookup", execErr.Step)

	var notFound *KpiNotFoundError
	require.True(t, errors.As(err, &notFound), "cause must stay reachable through the wrapper")
	assert.Equal(t, []string{"a", "b"}, notFound.Available)

	assert.Equal(t, StatusFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "missing")
}

func TestEngine_ConcurrentIndependentRuns(t *testing.T) {
	def := &Definition{
		ID: "counter",
		Steps: []Step{
			{Name: "emit", Run: func(_ context.Context, sc *StepContext) (any, error) {
				var in echoInput
				if err := sc.Bind(&in); err != nil {
					return nil, err
				}
				return in, nil
			}},
		},
	}
	engine := newTestEngine(t, def)

	done := make(chan error, 8)
	for i := range 8 {
		input, _ := json.Marshal(echoInput{Value: fmt.Sprintf("run-%d", i)})
		go func() {
			_, err := engine.Start(context.Background(), "counter", input)
			done <- err
		}()
	}
	for range 8 {
		require.NoError(t, <-done)
	}
}
