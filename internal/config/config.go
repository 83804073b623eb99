// Package config loads runtime settings from an optional config file,
// PASSCPA_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rob637/passcpa-sub012/internal/content"
	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/spacedrep"
)

// EnvPrefix prefixes every environment variable, e.g. PASSCPA_USER or
// PASSCPA_SCHEDULER_MIN_EASE.
const EnvPrefix = "PASSCPA"

// DefaultUser is the learner ID used when none is configured.
const DefaultUser = "local"

// Config is the resolved application configuration.
type Config struct {
	DB        string           `mapstructure:"db"` // empty = store.DefaultDBPath
	User      string           `mapstructure:"user"`
	LogLevel  string           `mapstructure:"log_level"`
	Selector  selector.Config  `mapstructure:"selector"`
	Scheduler spacedrep.Config `mapstructure:"scheduler"`
	Content   ContentConfig    `mapstructure:"content"`
}

// ContentConfig tunes the content provider.
type ContentConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":        "db",
	"user":      "user",
	"log-level": "log_level",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		User:      DefaultUser,
		LogLevel:  "warn",
		Selector:  selector.DefaultConfig(),
		Scheduler: spacedrep.DefaultConfig(),
		Content:   ContentConfig{CacheSize: content.DefaultCacheSize},
	}
}

// Load resolves the configuration. Sources, highest priority first: flags
// that were set explicitly, environment, the file at path (if non-empty),
// then Default. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment variables can override
// nested values during Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("db", d.DB)
	v.SetDefault("user", d.User)
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("selector.weak_accuracy", d.Selector.WeakAccuracy)
	v.SetDefault("selector.weak_min_attempts", d.Selector.WeakMinAttempts)
	v.SetDefault("selector.missed_fraction", d.Selector.MissedFraction)

	v.SetDefault("scheduler.initial_ease", d.Scheduler.InitialEase)
	v.SetDefault("scheduler.min_ease", d.Scheduler.MinEase)
	v.SetDefault("scheduler.relearn_interval", d.Scheduler.RelearnInterval)
	v.SetDefault("scheduler.again_penalty", d.Scheduler.AgainPenalty)
	v.SetDefault("scheduler.hard_penalty", d.Scheduler.HardPenalty)
	v.SetDefault("scheduler.hard_multiplier", d.Scheduler.HardMultiplier)
	v.SetDefault("scheduler.easy_multiplier", d.Scheduler.EasyMultiplier)
	v.SetDefault("scheduler.easy_bonus", d.Scheduler.EasyBonus)

	v.SetDefault("content.cache_size", d.Content.CacheSize)
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return errors.New("config: user must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("config: scheduler: %w", err)
	}
	if c.Selector.WeakAccuracy < 0 || c.Selector.WeakAccuracy > 100 {
		return fmt.Errorf("config: selector weak_accuracy %v outside 0-100", c.Selector.WeakAccuracy)
	}
	if c.Selector.WeakMinAttempts < 0 {
		return fmt.Errorf("config: selector weak_min_attempts %d must not be negative", c.Selector.WeakMinAttempts)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level. Empty means warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", s)
}
