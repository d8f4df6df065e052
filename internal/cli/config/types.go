// Package config loads gast CLI configuration from defaults, a gast.yaml
// file, GAST_ environment variables and command-line flags.
package config

// Default configuration values.
const (
	DefaultStateFile   = ".gast/state.db"
	DefaultOutput      = "auto"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 2 << 20
	DefaultPort        = 8787
	DefaultMaxBody     = 4 << 20
)

// ServerConfig holds configuration for gast serve.
type ServerConfig struct {
	Port    int   `koanf:"port"`
	MaxBody int64 `koanf:"max_body"`
	Watch   bool  `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	Roots       []string     `koanf:"roots"`
	Grammars    []string     `koanf:"grammars"`
	Exclude     []string     `koanf:"exclude"`
	Workers     int          `koanf:"workers"`
	Strict      bool         `koanf:"strict"`
	MaxFileSize int64        `koanf:"max_file_size"`
	StatePath   string       `koanf:"state_path"`
	Output      string       `koanf:"output"`
	Verbose     bool         `koanf:"verbose"`
	LogLevel    string       `koanf:"log_level"`
	Server      ServerConfig `koanf:"server"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}
