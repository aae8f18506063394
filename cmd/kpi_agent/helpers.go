package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/backend"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/config"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/dialect"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/executor"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/generation"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/llm"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/observability"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/store"
	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

// runtime bundles everything a workflow-driving command needs.
type runtime struct {
	cfg     *config.Config
	engine  *workflow.Engine
	defs    workflow.DefinitionStore
	pg      *store.Store // nil without DATABASE_URL
	printer *observability.Printer
	log     *logrus.Logger
	closers []func()
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// buildRuntime wires the backend, generation client, stores and engine
// from configuration. Without DATABASE_URL the run and definition stores
// are in-memory: fine for a single interactive session, not for resuming
// across processes.
func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	log := observability.NewLogger(os.Stderr, level)

	rt := &runtime{
		cfg:     cfg,
		printer: observability.NewPrinter(os.Stdout),
		log:     log,
	}

	duck, err := backend.Open(cfg.BackendPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open backend: %w", err)
	}
	rt.closers = append(rt.closers, func() { _ = duck.Close() })

	client, err := llm.NewClient(ctx, llm.ConfigForProvider(cfg.Provider), cfg.APIKey())
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}
	rt.closers = append(rt.closers, func() { _ = client.Close() })

	var runs workflow.RunStore
	if cfg.DatabaseURL != "" {
		pg, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			rt.close()
			return nil, err
		}
		rt.closers = append(rt.closers, pg.Close)
		rt.pg = pg
		runs = pg
		rt.defs = pg
	} else {
		runs = workflow.NewMemStore()
		rt.defs = workflow.NewMemDefinitions()
	}

	d := dialect.Resolve(cfg.Backend)
	ts := workflow.Toolset{
		Backend:     duck,
		Generator:   generation.NewLLMService(client),
		Runner:      executor.New(duck, d),
		Store:       rt.defs,
		Dialect:     d,
		PreviewRows: cfg.PreviewRows,
		SampleRows:  cfg.SampleRows,
	}

	rt.engine = workflow.NewEngine(runs, log)
	rt.engine.Register(workflow.NewKPIWorkflow(ts))
	rt.engine.Register(workflow.NewInsightWorkflow(ts))
	return rt, nil
}

func ask(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// confirmKPI renders the confirmation checkpoint and collects the user's
// decision. --yes confirms without prompting.
func (rt *runtime) confirmKPI(payload json.RawMessage) (workflow.ConfirmInput, error) {
	var c workflow.KPIConfirmation
	if err := json.Unmarshal(payload, &c); err != nil {
		return workflow.ConfirmInput{}, fmt.Errorf("unreadable suspend payload: %w", err)
	}
	rt.printer.PrintKPIConfirmation(&c)

	if flagYes {
		return workflow.ConfirmInput{Confirmed: true}, nil
	}

	reader := bufio.NewReader(os.Stdin)
	switch strings.ToLower(ask(reader, "Save this KPI? [y/N/e(dit)] ")) {
	case "y", "yes":
		return workflow.ConfirmInput{Confirmed: true}, nil
	case "e", "edit":
		name := ask(reader, fmt.Sprintf("Name [%s]: ", c.ProposedName))
		query := ask(reader, "Edited query (empty keeps generated): ")
		return workflow.ConfirmInput{Confirmed: true, EditedName: name, EditedQuery: query}, nil
	default:
		return workflow.ConfirmInput{Confirmed: false}, nil
	}
}

func (rt *runtime) confirmInsight(payload json.RawMessage) (workflow.ConfirmInput, error) {
	var c workflow.InsightConfirmation
	if err := json.Unmarshal(payload, &c); err != nil {
		return workflow.ConfirmInput{}, fmt.Errorf("unreadable suspend payload: %w", err)
	}
	rt.printer.PrintInsightConfirmation(&c)

	if flagYes {
		return workflow.ConfirmInput{Confirmed: true}, nil
	}

	reader := bufio.NewReader(os.Stdin)
	switch strings.ToLower(ask(reader, "Save this insight? [y/N/e(dit)] ")) {
	case "y", "yes":
		return workflow.ConfirmInput{Confirmed: true}, nil
	case "e", "edit":
		name := ask(reader, fmt.Sprintf("Name [%s]: ", c.ProposedName))
		text := ask(reader, "Edited text (empty keeps generated): ")
		return workflow.ConfirmInput{Confirmed: true, EditedName: name, EditedText: text}, nil
	default:
		return workflow.ConfirmInput{Confirmed: false}, nil
	}
}

// resumeWith serializes the confirmation and resumes the run.
func (rt *runtime) resumeWith(ctx context.Context, runID string, confirm workflow.ConfirmInput) (*workflow.Run, error) {
	resume, err := json.Marshal(confirm)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize confirmation: %w", err)
	}
	return rt.engine.Resume(ctx, runID, resume)
}

// reportOutcome prints the final result of a completed run.
func (rt *runtime) reportOutcome(run *workflow.Run) error {
	switch run.Status {
	case workflow.StatusSuspended:
		fmt.Printf("Run %s is suspended; resume it with: kpi_agent resume %s\n", run.ID, run.ID)
		return nil
	case workflow.StatusCompleted:
	default:
		return fmt.Errorf("run %s ended in state %s: %s", run.ID, run.Status, run.ErrorMessage)
	}

	switch run.WorkflowID {
	case workflow.WorkflowKPI:
		var outcome workflow.KPIOutcome
		if err := json.Unmarshal(run.State, &outcome); err != nil {
			return fmt.Errorf("unreadable run outcome: %w", err)
		}
		if outcome.Saved {
			fmt.Printf("Saved KPI %q\n", outcome.KPI.Name)
		} else {
			fmt.Printf("Nothing saved: %s\n", outcome.Reason)
		}
	case workflow.WorkflowInsight:
		var outcome workflow.InsightOutcome
		if err := json.Unmarshal(run.State, &outcome); err != nil {
			return fmt.Errorf("unreadable run outcome: %w", err)
		}
		if outcome.Saved {
			fmt.Printf("Saved insight %q (id %d)\n", outcome.Insight.Name, outcome.Insight.ID)
		} else {
			fmt.Printf("Nothing saved: %s\n", outcome.Reason)
		}
	}
	return nil
}
