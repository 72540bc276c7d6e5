package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads, defaults and validates the config at path. Relative source,
// db and output paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	applyDefaults(&cfg)
	normalizePaths(&cfg, filepath.Dir(path))

	if err := validateModule(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := validateLogLevel(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := validateEmit(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOptional is Load, except that a missing file yields Default().
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Module) == "" {
		cfg.Module = "module"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = []string{"."}
	}
	for i := range cfg.Emit {
		if strings.TrimSpace(cfg.Emit[i].Out) == "" {
			cfg.Emit[i].Out = "out"
		}
	}
}

func normalizePaths(cfg *Config, base string) {
	abs := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	cfg.Module = strings.TrimSpace(cfg.Module)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	for i, s := range cfg.Sources {
		cfg.Sources[i] = abs(s)
	}
	cfg.DB = abs(cfg.DB)
	for i := range cfg.Emit {
		cfg.Emit[i].Out = abs(cfg.Emit[i].Out)
		// Script files are paths; bare names pick embedded emitters.
		script := strings.TrimSpace(cfg.Emit[i].Script)
		if strings.HasSuffix(script, ".risor") {
			script = abs(script)
		}
		cfg.Emit[i].Script = script
	}
}
