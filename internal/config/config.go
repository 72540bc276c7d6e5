// Package config loads bindgen.toml.
package config

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "bindgen.toml"

// Config is the decoded bindgen.toml. Command-line flags override it.
type Config struct {
	Module         string   `toml:"module"`
	ImplicitExport bool     `toml:"implicit_export"`
	Sources        []string `toml:"sources"`
	DB             string   `toml:"db"`
	LogLevel       string   `toml:"log_level"`
	Emit           []Emit   `toml:"emit"`
}

// Emit names an emitter script and the directory its files go to.
type Emit struct {
	Script string `toml:"script"`
	Out    string `toml:"out"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
