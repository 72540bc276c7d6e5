package config

import (
	"fmt"
	"regexp"
)

var moduleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

func validateModule(cfg *Config) error {
	if !moduleNamePattern.MatchString(cfg.Module) {
		return fmt.Errorf("module must be an identifier, got %q", cfg.Module)
	}
	return nil
}

func validateLogLevel(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("log_level must be one of: debug, info, warn, error; got %q", cfg.LogLevel)
}

func validateEmit(cfg *Config) error {
	for i, e := range cfg.Emit {
		if e.Script == "" {
			return fmt.Errorf("emit[%d].script must not be empty", i)
		}
	}
	return nil
}
