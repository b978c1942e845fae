package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagData     = flag.String("data", "", "Game data directory (highest priority root)")
	flagBakeSize = flag.Int("bake-size", 0, "Baked texture resolution")
	flagWorkers  = flag.Int("workers", 0, "Lightmap bake worker count")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagData != "" {
		cfg.Data.Roots = append(cfg.Data.Roots, *flagData)
	}
	if *flagBakeSize > 0 {
		cfg.Bake.Size = *flagBakeSize
	}
	if *flagWorkers > 0 {
		cfg.Bake.Workers = *flagWorkers
	}
}
