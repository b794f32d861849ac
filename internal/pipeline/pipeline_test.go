package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/foamgen/foamgen/pkg/config"
)

type fakeStage struct {
	name string
	run  func(ctx context.Context) error
}

func (f *fakeStage) Name() string { return f.name }

func (f *fakeStage) Run(ctx context.Context) error {
	if f.run == nil {
		return nil
	}
	return f.run(ctx)
}

func TestRunnerExecutesInOrder(t *testing.T) {
	var order []string
	record := func(name string) *fakeStage {
		return &fakeStage{name: name, run: func(context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	runner := NewRunner(record("pack"), record("tess"), record("smesh"))
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"pack", "tess", "smesh"}
	if len(order) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("stage %d: expected %s, got %s", i, want[i], order[i])
		}
	}

	run := runner.State().Snapshot()
	if run.Status != StatusCompleted {
		t.Errorf("expected run status %s, got %s", StatusCompleted, run.Status)
	}
	for _, st := range run.Stages {
		if st.Status != StatusCompleted {
			t.Errorf("stage %s: expected status %s, got %s", st.Name, StatusCompleted, st.Status)
		}
	}

	agg := runner.Metrics().Aggregate("stage_duration_seconds", map[string]string{"stage": "pack"})
	if agg == nil || agg.Count != 1 {
		t.Errorf("expected one recorded pack duration, got %+v", agg)
	}
}

func TestRunnerStopsOnFirstFailure(t *testing.T) {
	stageErr := errors.New("neper crashed")
	ran := make(map[string]bool)

	runner := NewRunner(
		&fakeStage{name: "pack", run: func(context.Context) error {
			ran["pack"] = true
			return nil
		}},
		&fakeStage{name: "tess", run: func(context.Context) error {
			ran["tess"] = true
			return stageErr
		}},
		&fakeStage{name: "smesh", run: func(context.Context) error {
			ran["smesh"] = true
			return nil
		}},
	)

	err := runner.Run(context.Background())
	if !errors.Is(err, stageErr) {
		t.Fatalf("expected stage error, got %v", err)
	}
	if !ran["pack"] || !ran["tess"] {
		t.Error("expected pack and tess to run")
	}
	if ran["smesh"] {
		t.Error("expected smesh to be skipped after failure")
	}

	run := runner.State().Snapshot()
	if run.Status != StatusFailed {
		t.Errorf("expected run status %s, got %s", StatusFailed, run.Status)
	}
	if len(run.Stages) != 2 {
		t.Fatalf("expected 2 stage records, got %d", len(run.Stages))
	}
	if run.Stages[1].Status != StatusFailed || run.Stages[1].Error == "" {
		t.Errorf("expected failed tess record, got %+v", run.Stages[1])
	}
}

func TestRunnerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(map[string]bool)

	runner := NewRunner(
		&fakeStage{name: "pack", run: func(context.Context) error {
			ran["pack"] = true
			cancel()
			return nil
		}},
		&fakeStage{name: "tess", run: func(context.Context) error {
			ran["tess"] = true
			return nil
		}},
	)

	err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ran["tess"] {
		t.Error("expected tess to be skipped after cancellation")
	}
	if got := runner.State().Snapshot().Status; got != StatusFailed {
		t.Errorf("expected run status %s, got %s", StatusFailed, got)
	}
}

func TestRunStateSnapshotIsACopy(t *testing.T) {
	state := NewRunState("run-1")
	state.Start()
	state.StageStarted("pack")

	snap := state.Snapshot()
	snap.Stages[0].Status = StatusFailed

	if got := state.Snapshot().Stages[0].Status; got != StatusRunning {
		t.Errorf("snapshot mutation leaked into state: %s", got)
	}
}

func TestFromConfigSelectsActiveStages(t *testing.T) {
	cfg := config.Default()
	cfg.Pack.Active = true
	cfg.SMesh.Active = true

	runner, err := FromConfig(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if len(runner.stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(runner.stages))
	}
	if runner.stages[0].Name() != "pack" || runner.stages[1].Name() != "smesh" {
		t.Errorf("unexpected stage order: %s, %s",
			runner.stages[0].Name(), runner.stages[1].Name())
	}
}

func TestFromConfigRejectsBadTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.SMesh.Active = true
	cfg.SMesh.ToolTimeout = "soon"

	if _, err := FromConfig(cfg, t.TempDir()); err == nil {
		t.Error("expected error for malformed tool timeout")
	}
}
