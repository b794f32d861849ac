package pipeline

import (
	"github.com/foamgen/foamgen/internal/morph"
	"github.com/foamgen/foamgen/internal/packing"
	"github.com/foamgen/foamgen/internal/smesh"
	"github.com/foamgen/foamgen/internal/tessellation"
	"github.com/foamgen/foamgen/internal/umesh"
	"github.com/foamgen/foamgen/pkg/config"
)

// FromConfig assembles a runner with the active stages in generation
// order: pack, tess, morph, umesh, smesh. All stages share dir as
// their working directory.
func FromConfig(cfg *config.Config, dir string) (*Runner, error) {
	var stages []Stage

	if cfg.Pack.Active {
		stages = append(stages, packing.NewStage(cfg.Filename, dir, cfg.Pack))
	}
	if cfg.Tess.Active {
		stages = append(stages, tessellation.NewStage(cfg.Filename, dir, cfg.Pack.NCells, cfg.Tess))
	}
	if cfg.Morph.Active {
		stages = append(stages, morph.NewStage(cfg.Filename, dir, cfg.Morph))
	}
	if cfg.UMesh.Active {
		stages = append(stages, umesh.NewStage(cfg.Filename, dir, cfg.UMesh))
	}
	if cfg.SMesh.Active {
		stage, err := smesh.NewStage(cfg.Filename, dir, cfg.SMesh)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}

	return NewRunner(stages...), nil
}
