package pipeline

import (
	"sync"
	"time"
)

// Status of a run or a stage.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// StageResult records the outcome of one stage.
type StageResult struct {
	Name     string
	Status   Status
	Duration time.Duration
	Error    string
}

// Run is a snapshot of a pipeline run.
type Run struct {
	ID        string
	Status    Status
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Error     string
	Stages    []StageResult
}

// RunState tracks a pipeline run. Safe for concurrent observation
// while the runner mutates it.
type RunState struct {
	mu  sync.RWMutex
	run Run
}

// NewRunState creates a pending run with the given ID.
func NewRunState(id string) *RunState {
	return &RunState{
		run: Run{ID: id, Status: StatusPending},
	}
}

// ID returns the run identifier.
func (s *RunState) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run.ID
}

// Start marks the run as running
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Status = StatusRunning
	s.run.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Status = StatusCompleted
	s.run.EndTime = time.Now()
	s.run.Duration = s.run.EndTime.Sub(s.run.StartTime)
}

// Fail marks the run as failed
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Status = StatusFailed
	s.run.EndTime = time.Now()
	s.run.Duration = s.run.EndTime.Sub(s.run.StartTime)
	s.run.Error = err.Error()
}

// StageStarted records a stage entering the running state.
func (s *RunState) StageStarted(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Stages = append(s.run.Stages, StageResult{Name: name, Status: StatusRunning})
}

// StageCompleted records a successful stage.
func (s *RunState) StageCompleted(name string, d time.Duration) {
	s.finishStage(name, StatusCompleted, d, "")
}

// StageFailed records a failed stage.
func (s *RunState) StageFailed(name string, d time.Duration, err error) {
	s.finishStage(name, StatusFailed, d, err.Error())
}

func (s *RunState) finishStage(name string, status Status, d time.Duration, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.run.Stages) - 1; i >= 0; i-- {
		if s.run.Stages[i].Name == name {
			s.run.Stages[i].Status = status
			s.run.Stages[i].Duration = d
			s.run.Stages[i].Error = errMsg
			return
		}
	}
}

// Snapshot returns a copy of the run state.
func (s *RunState) Snapshot() Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run := s.run
	run.Stages = make([]StageResult, len(s.run.Stages))
	copy(run.Stages, s.run.Stages)
	return run
}
