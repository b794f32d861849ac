package config

import (
	"fmt"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	if cfg.Filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := validatePack(&cfg.Pack); err != nil {
		return fmt.Errorf("pack validation failed: %w", err)
	}
	if err := validateMorph(&cfg.Morph); err != nil {
		return fmt.Errorf("morph validation failed: %w", err)
	}
	if err := validateUMesh(&cfg.UMesh); err != nil {
		return fmt.Errorf("umesh validation failed: %w", err)
	}
	if err := validateSMesh(&cfg.SMesh); err != nil {
		return fmt.Errorf("smesh validation failed: %w", err)
	}

	return nil
}

// validatePack validates the sphere packing stage configuration
func validatePack(p *PackConfig) error {
	if p.NCells <= 0 {
		return fmt.Errorf("ncells must be positive, got %d", p.NCells)
	}
	if p.Shape < 0 {
		return fmt.Errorf("shape cannot be negative, got %f", p.Shape)
	}
	if p.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %f", p.Scale)
	}
	validAlgs := map[string]bool{
		"simple": true,
		"fba":    true,
		"ls":     true,
		"lsgd":   true,
	}
	if !validAlgs[p.Algorithm] {
		return fmt.Errorf("invalid alg: %s (must be simple, fba, ls, or lsgd)", p.Algorithm)
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("maxit must be positive, got %d", p.MaxAttempts)
	}
	return nil
}

// validateMorph validates the morphology stage configuration
func validateMorph(m *MorphConfig) error {
	if m.WallThickness <= 0 {
		return fmt.Errorf("dwall must be positive, got %f", m.WallThickness)
	}
	return nil
}

// validateUMesh validates the unstructured meshing stage configuration
func validateUMesh(u *UMeshConfig) error {
	if u.PointSizing <= 0 {
		return fmt.Errorf("psize must be positive, got %f", u.PointSizing)
	}
	if u.EdgeSizing <= 0 {
		return fmt.Errorf("esize must be positive, got %f", u.EdgeSizing)
	}
	if u.CellSizing <= 0 {
		return fmt.Errorf("csize must be positive, got %f", u.CellSizing)
	}
	return nil
}

// validateSMesh validates the structured meshing stage configuration
func validateSMesh(s *SMeshConfig) error {
	if s.Porosity <= 0 || s.Porosity >= 1 {
		return fmt.Errorf("porosity must be in (0, 1), got %f", s.Porosity)
	}
	if s.StrutContent < 0 || s.StrutContent >= 1 {
		return fmt.Errorf("strut must be in [0, 1), got %f", s.StrutContent)
	}
	// Zero isstrut means the adapted edge size from a previous run is
	// used as the initial guess.
	if s.StrutGuess < 0 {
		return fmt.Errorf("isstrut cannot be negative, got %f", s.StrutGuess)
	}
	if s.DomainGuess <= 0 {
		return fmt.Errorf("dsize_guess must be positive, got %f", s.DomainGuess)
	}
	if s.DomainStep <= 0 {
		return fmt.Errorf("dsize_step must be positive, got %f", s.DomainStep)
	}
	if s.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %f", s.Tolerance)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", s.MaxIterations)
	}
	if _, err := s.GetToolTimeout(); err != nil {
		return fmt.Errorf("invalid tool_timeout %s: %w", s.ToolTimeout, err)
	}
	return nil
}
