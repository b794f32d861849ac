// Package pipeline sequences the foam generation stages. Stages run
// in a fixed order in a shared working directory, each consuming the
// files its predecessors produced; the first failure stops the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/foamgen/foamgen/internal/metrics"
	"github.com/foamgen/foamgen/pkg/logger"
	"github.com/foamgen/foamgen/pkg/utils"
)

// Stage is one step of the generation pipeline.
type Stage interface {
	// Name identifies the stage in logs and run state.
	Name() string
	// Run executes the stage. Inputs and outputs go through the
	// shared working directory.
	Run(ctx context.Context) error
}

// Runner executes stages in order and tracks the run state.
type Runner struct {
	stages    []Stage
	state     *RunState
	collector *metrics.Collector
}

// NewRunner creates a runner over the given stages.
func NewRunner(stages ...Stage) *Runner {
	return &Runner{
		stages:    stages,
		state:     NewRunState(utils.GenerateRunID()),
		collector: metrics.NewCollector(),
	}
}

// State returns the run state tracker.
func (r *Runner) State() *RunState {
	return r.state
}

// Metrics returns the run's metric collector.
func (r *Runner) Metrics() *metrics.Collector {
	return r.collector
}

// Run executes all stages sequentially. It stops on the first stage
// failure and checks for cancellation between stages.
func (r *Runner) Run(ctx context.Context) error {
	r.state.Start()
	logger.Info("pipeline started", "run_id", r.state.ID(), "stages", len(r.stages))

	for _, stage := range r.stages {
		if err := ctx.Err(); err != nil {
			r.state.Fail(err)
			return err
		}

		logger.Info("stage started", "stage", stage.Name())
		r.state.StageStarted(stage.Name())
		start := time.Now()

		if err := stage.Run(ctx); err != nil {
			elapsed := time.Since(start)
			r.state.StageFailed(stage.Name(), elapsed, err)
			r.state.Fail(err)
			logger.Error("stage failed", "stage", stage.Name(), "duration", elapsed, "error", err)
			return fmt.Errorf("pipeline: stage %s: %w", stage.Name(), err)
		}

		elapsed := time.Since(start)
		r.collector.Record("stage_duration_seconds", elapsed.Seconds(),
			map[string]string{"stage": stage.Name()})
		r.state.StageCompleted(stage.Name(), elapsed)
		logger.Info("stage finished", "stage", stage.Name(), "duration", elapsed)
	}

	r.state.Complete()
	logger.Info("pipeline finished", "run_id", r.state.ID(), "duration", r.state.Snapshot().Duration)
	return nil
}
