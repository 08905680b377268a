package sim

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"orbitribbon/internal/collision"
	"orbitribbon/internal/physics"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for config values the solver cannot use.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the tunables of a simulation world. The tick rate is not
// one of them: it is fixed at TickRate.
type Config struct {
	Iterations  int        `yaml:"iterations"`
	ERP         float64    `yaml:"erp"`
	CFM         float64    `yaml:"cfm"`
	Gravity     [3]float64 `yaml:"gravity"`
	Bounce      float64    `yaml:"bounce"`
	Mu          float64    `yaml:"mu"`
	MaxContacts int        `yaml:"max_contacts"`
	CellSize    float64    `yaml:"cell_size"`
	// GPUThreshold is the dynamic object count above which an installed
	// pair finder replaces the hash grid.
	GPUThreshold int `yaml:"gpu_threshold"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:   physics.DefaultIterations,
		ERP:          physics.DefaultERP,
		CFM:          physics.DefaultCFM,
		Bounce:       collision.DefaultBounce,
		Mu:           collision.DefaultMu,
		MaxContacts:  collision.DefaultMaxContacts,
		CellSize:     physics.DefaultCellSize,
		GPUThreshold: 2000,
	}
}

// LoadConfig reads a YAML config. Keys missing from the file keep their
// defaults, and a missing file yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("Config: file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values that would stall or destabilize the solver.
func (c Config) Validate() error {
	switch {
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
	case c.ERP < 0 || c.ERP > 1:
		return fmt.Errorf("%w: erp must be within [0, 1], got %g", ErrInvalidConfig, c.ERP)
	case c.CFM < 0:
		return fmt.Errorf("%w: cfm must not be negative, got %g", ErrInvalidConfig, c.CFM)
	case c.MaxContacts <= 0:
		return fmt.Errorf("%w: max_contacts must be positive, got %d", ErrInvalidConfig, c.MaxContacts)
	case c.CellSize <= 0:
		return fmt.Errorf("%w: cell_size must be positive, got %g", ErrInvalidConfig, c.CellSize)
	}
	return nil
}

func (c Config) gravity() mgl64.Vec3 {
	return mgl64.Vec3(c.Gravity)
}
