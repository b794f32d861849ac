package packing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/rand"

	"github.com/foamgen/foamgen/internal/toolexec"
	"github.com/foamgen/foamgen/pkg/config"
	"github.com/foamgen/foamgen/pkg/logger"
	"github.com/foamgen/foamgen/pkg/utils"
)

// Stage packs spheres and writes <name>Packing.csv.
type Stage struct {
	name    string
	dir     string
	cfg     config.PackConfig
	runner  *toolexec.Runner
	backoff utils.BackoffStrategy
}

// NewStage builds the packing stage rooted at dir.
func NewStage(name, dir string, cfg config.PackConfig) *Stage {
	return &Stage{
		name:    name,
		dir:     dir,
		cfg:     cfg,
		runner:  toolexec.NewRunner(dir, 0),
		backoff: utils.NewLinearBackoff(time.Second, 10*time.Second),
	}
}

// Name identifies the stage to the pipeline runner
func (s *Stage) Name() string { return "pack" }

// Run generates the packing with the configured backend and writes
// the Packing.csv exchange file.
func (s *Stage) Run(ctx context.Context) error {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var (
		spheres []Sphere
		err     error
	)
	if s.cfg.Algorithm == "simple" {
		spheres, err = s.runSimple(ctx, seed)
	} else {
		spheres, err = s.runGenerator(ctx, seed)
	}
	if err != nil {
		return err
	}

	csvPath := filepath.Join(s.dir, s.name+"Packing.csv")
	if err := WriteCSV(csvPath, spheres); err != nil {
		return err
	}
	logger.Info("packing written", "spheres", len(spheres), "file", csvPath)

	if s.cfg.Clean {
		s.cleanScratch()
	}
	return nil
}

func (s *Stage) runSimple(ctx context.Context, seed int64) ([]Sphere, error) {
	diams := SampleDiameters(s.cfg.Shape, s.cfg.Scale, s.cfg.NCells, uint64(seed))
	if err := WriteDiameters(filepath.Join(s.dir, diamFile), diams); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(uint64(seed)))
	spheres, err := SimplePacking(ctx, diams, rng)
	if err != nil {
		return nil, fmt.Errorf("packing: simple algorithm: %w", err)
	}
	return spheres, nil
}

// runGenerator drives the external packing generator. Dense target
// distributions make it fail sporadically, so each attempt resamples
// the diameters before retrying.
func (s *Stage) runGenerator(ctx context.Context, seed int64) ([]Sphere, error) {
	if err := writeGeneratorConfig(s.dir, s.cfg.NCells, seed); err != nil {
		return nil, err
	}

	infoPath := filepath.Join(s.dir, infoFile)
	packed := false
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, s.backoff.NextDelay(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := os.Remove(infoPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("packing: remove %s: %w", infoPath, err)
		}

		diams := SampleDiameters(s.cfg.Shape, s.cfg.Scale, s.cfg.NCells, uint64(seed)+uint64(attempt))
		if err := WriteDiameters(filepath.Join(s.dir, diamFile), diams); err != nil {
			return nil, err
		}

		logger.Info("running packing generator",
			"attempt", attempt+1, "max_attempts", s.cfg.MaxAttempts, "alg", s.cfg.Algorithm)
		if _, err := s.runner.Run(ctx, generatorTool, "-"+s.cfg.Algorithm); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("packing generator attempt failed", "attempt", attempt+1, "error", err)
		}
		if _, err := os.Stat(infoPath); err == nil {
			packed = true
			break
		}
	}
	if !packed {
		return nil, fmt.Errorf("%w: %d attempts", ErrPackingFailed, s.cfg.MaxAttempts)
	}

	theory, final, err := readPorosities(s.dir)
	if err != nil {
		return nil, err
	}
	logger.Info("packing generated", "theoretical_porosity", theory, "final_porosity", final)

	spheres, err := readSpheres(s.dir)
	if err != nil {
		return nil, err
	}
	rescaleDiameters(spheres, theory, final)
	return spheres, nil
}

// cleanScratch deletes the generator's working files
func (s *Stage) cleanScratch() {
	files := []string{
		confFile,
		diamFile,
		infoFile,
		resultFile,
		"packing_init.xyzd",
		"packing_prev.xyzd",
		"contraction_energies.txt",
	}
	for _, name := range files {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove scratch file", "file", name, "error", err)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
