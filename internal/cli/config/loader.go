package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/gast/internal/engine"
)

// Context keys.
type (
	loggerKey struct{}
	configKey struct{}
)

// envPrefix prefixes environment overrides, e.g. GAST_WORKERS.
const envPrefix = "GAST_"

// configFileNames are looked up in the working directory, in order.
var configFileNames = []string{"gast.yaml", "gast.yml", ".gast.yaml", ".gast.yml"}

// flagKeys maps flag names whose config key differs from the snake_case name.
var flagKeys = map[string]string{
	"state":    "state_path",
	"grammar":  "grammars",
	"port":     "server.port",
	"max-body": "server.max_body",
	"watch":    "server.watch",
}

// findConfigFile returns the explicit path, or the first config file found
// in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey maps GAST_MAX_FILE_SIZE to max_file_size and GAST_SERVER_PORT to
// server.port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "server_"); ok {
		return "server." + rest
	}
	return key
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"roots":           []string{"."},
		"exclude":         engine.DefaultExclude,
		"workers":         runtime.NumCPU(),
		"strict":          false,
		"max_file_size":   DefaultMaxFileSize,
		"state_path":      DefaultStateFile,
		"output":          DefaultOutput,
		"verbose":         false,
		"log_level":       DefaultLogLevel,
		"server.port":     DefaultPort,
		"server.max_body": DefaultMaxBody,
		"server.watch":    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFile := findConfigFile(cfgFile)
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = configFile

	// Lists given through the environment arrive as one comma-separated string.
	cfg.Roots = splitList(cfg.Roots)
	cfg.Grammars = splitList(cfg.Grammars)
	cfg.Exclude = splitList(cfg.Exclude)

	return &cfg, nil
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context, falling back to
// defaults without a file, environment or flags.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		Roots:       []string{"."},
		Exclude:     engine.DefaultExclude,
		Workers:     runtime.NumCPU(),
		MaxFileSize: DefaultMaxFileSize,
		StatePath:   DefaultStateFile,
		Output:      DefaultOutput,
		LogLevel:    DefaultLogLevel,
		Server:      ServerConfig{Port: DefaultPort, MaxBody: DefaultMaxBody},
	}
}
