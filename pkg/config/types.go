package config

import "time"

// Config represents the full foam generation configuration.
// Each stage section has an Active switch; disabled stages are skipped
// by the pipeline runner.
type Config struct {
	Filename string      `yaml:"filename"`
	LogLevel string      `yaml:"log_level"`
	Pack     PackConfig  `yaml:"pack"`
	Tess     TessConfig  `yaml:"tess"`
	Morph    MorphConfig `yaml:"morph"`
	UMesh    UMeshConfig `yaml:"umesh"`
	SMesh    SMeshConfig `yaml:"smesh"`
}

// PackConfig configures the sphere packing stage
type PackConfig struct {
	Active      bool    `yaml:"active"`
	NCells      int     `yaml:"ncells"`
	Shape       float64 `yaml:"shape"` // lognormal shape factor; 0 means monodisperse
	Scale       float64 `yaml:"scale"` // lognormal scale factor
	Algorithm   string  `yaml:"alg"`   // simple, fba, ls, lsgd
	MaxAttempts int     `yaml:"maxit"` // attempts for the external packing generator
	Seed        int64   `yaml:"seed,omitempty"`
	Clean       bool    `yaml:"clean"`
}

// TessConfig configures the Laguerre tessellation stage
type TessConfig struct {
	Active bool `yaml:"active"`
	Clean  bool `yaml:"clean"`
}

// MorphConfig configures the CAD morphology stage
type MorphConfig struct {
	Active        bool    `yaml:"active"`
	WallThickness float64 `yaml:"dwall"`
	Clean         bool    `yaml:"clean"`
}

// UMeshConfig configures the unstructured meshing stage
type UMeshConfig struct {
	Active      bool    `yaml:"active"`
	PointSizing float64 `yaml:"psize"`
	EdgeSizing  float64 `yaml:"esize"`
	CellSizing  float64 `yaml:"csize"`
	Convert     bool    `yaml:"convert"` // convert mesh to *.xml for fenics
}

// SMeshConfig configures the structured voxel meshing stage.
// Porosity and strut content are targets matched by the root-finding
// solvers; tolerance and iteration caps bound that search.
type SMeshConfig struct {
	Active        bool    `yaml:"active"`
	Porosity      float64 `yaml:"porosity"`
	StrutContent  float64 `yaml:"strut"`
	StrutGuess    float64 `yaml:"isstrut"`     // initial guess of strut size parameter
	DomainGuess   float64 `yaml:"dsize_guess"` // initial guess of box size in voxels
	DomainStep    float64 `yaml:"dsize_step"`  // initial bracket expansion step
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	ToolTimeout   string  `yaml:"tool_timeout"` // e.g., "120s"; empty means no timeout
	Clean         bool    `yaml:"clean"`
}

// GetToolTimeout parses the external tool timeout
func (s *SMeshConfig) GetToolTimeout() (time.Duration, error) {
	if s.ToolTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.ToolTimeout)
}

// Default returns a configuration with the stock foam generation
// parameters. All stages start disabled; callers enable the ones
// they want to run.
func Default() *Config {
	return &Config{
		Filename: "Foam",
		LogLevel: "info",
		Pack: PackConfig{
			NCells:      27,
			Shape:       0.2,
			Scale:       0.35,
			Algorithm:   "fba",
			MaxAttempts: 5,
			Clean:       true,
		},
		Tess: TessConfig{
			Clean: true,
		},
		Morph: MorphConfig{
			WallThickness: 0.02,
			Clean:         true,
		},
		UMesh: UMeshConfig{
			PointSizing: 0.025,
			EdgeSizing:  0.1,
			CellSizing:  0.1,
			Convert:     true,
		},
		SMesh: SMeshConfig{
			Porosity:      0.94,
			StrutContent:  0.6,
			StrutGuess:    4,
			DomainGuess:   100,
			DomainStep:    20,
			Tolerance:     1e-2,
			MaxIterations: 50,
			Clean:         true,
		},
	}
}
