// Package config handles tool configuration loading and management.
package config

import "runtime"

// Config holds all map tool settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Bake    BakeConfig    `yaml:"bake"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds game data locations.
type DataConfig struct {
	Roots []string `yaml:"roots"` // extracted data directories, last wins
}

// BakeConfig holds lightmap bake settings.
type BakeConfig struct {
	Size    int `yaml:"size"`    // baked texture resolution
	Workers int `yaml:"workers"` // bake pool size
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Roots: []string{"data"},
		},
		Bake: BakeConfig{
			Size:    128,
			Workers: runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
