// Package config holds the driver's tunables and an optional YAML overlay.
// All fields have spec-mandated defaults; a YAML file only ever narrows or
// overrides a default, never introduces a new tunable.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of driver/engine tunables.
type Config struct {
	// PollIntervalSeconds is how often the driver drains the queue of
	// QUEUED experiments, whether or not experiments are already loaded;
	// when none are loaded, it also bounds the idle sleep.
	PollIntervalSeconds int `yaml:"pollIntervalSeconds"`

	// FlushThreshold is the task-snapshot count above which a loaded
	// experiment's buffer is flushed.
	FlushThreshold int `yaml:"flushThreshold"`

	// MinTemperatureC and MaxTemperatureC bound Machine.TemperatureC.
	MinTemperatureC float64 `yaml:"minTemperatureC"`
	MaxTemperatureC float64 `yaml:"maxTemperatureC"`

	// InitialTemperatureC is every machine's starting temperature.
	InitialTemperatureC float64 `yaml:"initialTemperatureC"`

	// TemperatureIncreasePerTick is added to TemperatureC, scaled by Load,
	// on every tick a machine performs work.
	TemperatureIncreasePerTick float64 `yaml:"temperatureIncreasePerTick"`

	// KernelBaselineMB is every machine's starting MemoryMB.
	KernelBaselineMB int64 `yaml:"kernelBaselineMB"`
}

// Default returns the spec's compile-time tunable values.
func Default() Config {
	return Config{
		PollIntervalSeconds:        5,
		FlushThreshold:             3000,
		MinTemperatureC:            0.0,
		MaxTemperatureC:            80.0,
		InitialTemperatureC:        23.0,
		TemperatureIncreasePerTick: 10.0,
		KernelBaselineMB:           50,
	}
}

// Load returns Default() overlaid with overlayPath's YAML content, if
// overlayPath exists. A missing overlay file is not an error: the driver
// reads "<storePath>.config.yaml" speculatively and silently falls back to
// defaults when it isn't there (§4.8 of the design). A present but malformed
// overlay file IS an error — a typo should fail loudly, not silently revert
// to defaults.
func Load(overlayPath string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config overlay %s: %w", overlayPath, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config overlay %s: %w", overlayPath, err)
	}
	return cfg, nil
}
