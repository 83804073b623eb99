package spacedrep

import (
	"fmt"
	"math"
)

// Default SM-2 style constants. Config fields left at zero fall back to these.
const (
	DefaultInitialEase     = 2.5
	DefaultMinEase         = 1.3
	DefaultRelearnInterval = 1
	DefaultAgainPenalty    = 0.2
	DefaultHardPenalty     = 0.15
	DefaultHardMultiplier  = 1.2
	DefaultEasyMultiplier  = 1.3
	DefaultEasyBonus       = 0.15
)

// Config holds the interval and ease-factor constants used by the Scheduler.
// Zero values produce the defaults above.
type Config struct {
	InitialEase     float64 `mapstructure:"initial_ease"`     // ease for never-reviewed items
	MinEase         float64 `mapstructure:"min_ease"`         // ease floor
	RelearnInterval int     `mapstructure:"relearn_interval"` // days after "again"
	AgainPenalty    float64 `mapstructure:"again_penalty"`
	HardPenalty     float64 `mapstructure:"hard_penalty"`
	HardMultiplier  float64 `mapstructure:"hard_multiplier"`
	EasyMultiplier  float64 `mapstructure:"easy_multiplier"`
	EasyBonus       float64 `mapstructure:"easy_bonus"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		InitialEase:     DefaultInitialEase,
		MinEase:         DefaultMinEase,
		RelearnInterval: DefaultRelearnInterval,
		AgainPenalty:    DefaultAgainPenalty,
		HardPenalty:     DefaultHardPenalty,
		HardMultiplier:  DefaultHardMultiplier,
		EasyMultiplier:  DefaultEasyMultiplier,
		EasyBonus:       DefaultEasyBonus,
	}
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitialEase == 0 {
		c.InitialEase = d.InitialEase
	}
	if c.MinEase == 0 {
		c.MinEase = d.MinEase
	}
	if c.RelearnInterval == 0 {
		c.RelearnInterval = d.RelearnInterval
	}
	if c.AgainPenalty == 0 {
		c.AgainPenalty = d.AgainPenalty
	}
	if c.HardPenalty == 0 {
		c.HardPenalty = d.HardPenalty
	}
	if c.HardMultiplier == 0 {
		c.HardMultiplier = d.HardMultiplier
	}
	if c.EasyMultiplier == 0 {
		c.EasyMultiplier = d.EasyMultiplier
	}
	if c.EasyBonus == 0 {
		c.EasyBonus = d.EasyBonus
	}
	return c
}

// Validate reports whether the (defaulted) config is usable.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case !finite(c.MinEase) || c.MinEase < 1:
		return fmt.Errorf("%w: min ease %v must be >= 1", ErrInvalidConfig, c.MinEase)
	case !finite(c.InitialEase) || c.InitialEase < c.MinEase:
		return fmt.Errorf("%w: initial ease %v below min ease %v", ErrInvalidConfig, c.InitialEase, c.MinEase)
	case c.RelearnInterval < 1:
		return fmt.Errorf("%w: relearn interval %d must be >= 1 day", ErrInvalidConfig, c.RelearnInterval)
	case c.AgainPenalty < 0 || c.HardPenalty < 0 || c.EasyBonus < 0:
		return fmt.Errorf("%w: ease adjustments must not be negative", ErrInvalidConfig)
	case !finite(c.HardMultiplier) || c.HardMultiplier < 1:
		return fmt.Errorf("%w: hard multiplier %v must be >= 1", ErrInvalidConfig, c.HardMultiplier)
	case !finite(c.EasyMultiplier) || c.EasyMultiplier < 1:
		return fmt.Errorf("%w: easy multiplier %v must be >= 1", ErrInvalidConfig, c.EasyMultiplier)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
