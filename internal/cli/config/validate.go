package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/gast/pkg/grammar"
)

var (
	validOutputs   = []string{"auto", "text", "json", "yaml"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if !contains(validOutputs, c.Output) {
		return fmt.Errorf("invalid output %q (want one of %s)", c.Output, strings.Join(validOutputs, ", "))
	}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log_level %q (want one of %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	for _, name := range c.Grammars {
		if _, ok := grammar.Get(name); !ok {
			return fmt.Errorf("%w: %s\nHint: run 'gast grammars' to list supported grammars", grammar.ErrUnknownGrammar, name)
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxBody <= 0 {
		return fmt.Errorf("server.max_body must be positive, got %d", c.Server.MaxBody)
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
