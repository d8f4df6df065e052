package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/gast/pkg/grammars/java"
	_ "github.com/leapstack-labs/gast/pkg/grammars/python"
)

// chdir switches to a fresh temp dir for the test.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("state", "", "")
	fs.StringSlice("grammar", nil, "")
	fs.Int("workers", 0, "")
	fs.Bool("strict", false, "")
	fs.StringP("output", "o", "", "")
	fs.Int("port", 0, "")
	fs.Int64("max-body", 0, "")
	fs.Int64("max-file-size", 0, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"."}, cfg.Roots)
	assert.Empty(t, cfg.Grammars)
	assert.Contains(t, cfg.Exclude, "node_modules")
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, int64(DefaultMaxBody), cfg.Server.MaxBody)
	assert.Empty(t, cfg.ConfigFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gast.yaml"), []byte(`
roots: [src, lib]
grammars: [java]
workers: 2
strict: true
output: json
server:
  port: 9000
`), 0o600))

	t.Run("file", func(t *testing.T) {
		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, "gast.yaml", cfg.ConfigFile)
		assert.Equal(t, []string{"src", "lib"}, cfg.Roots)
		assert.Equal(t, []string{"java"}, cfg.Grammars)
		assert.Equal(t, 2, cfg.Workers)
		assert.True(t, cfg.Strict)
		assert.Equal(t, "json", cfg.Output)
		assert.Equal(t, 9000, cfg.Server.Port)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("GAST_WORKERS", "3")
		t.Setenv("GAST_GRAMMARS", "java,python")
		t.Setenv("GAST_SERVER_PORT", "9100")

		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Workers)
		assert.Equal(t, []string{"java", "python"}, cfg.Grammars)
		assert.Equal(t, 9100, cfg.Server.Port)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("GAST_WORKERS", "3")
		fs := testFlags()
		require.NoError(t, fs.Parse([]string{
			"--workers", "5", "--state", "db/x.db", "--grammar", "python",
			"--port", "9200", "--max-body", "1024", "-o", "yaml",
		}))

		cfg, err := LoadConfig("", fs)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Workers)
		assert.Equal(t, "db/x.db", cfg.StatePath)
		assert.Equal(t, []string{"python"}, cfg.Grammars)
		assert.Equal(t, 9200, cfg.Server.Port)
		assert.Equal(t, int64(1024), cfg.Server.MaxBody)
		assert.Equal(t, "yaml", cfg.Output)
		assert.True(t, cfg.Strict, "unset flags keep file values")
	})
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("max_file_size: 100\n"), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, int64(100), cfg.MaxFileSize)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "workers", mutate: func(c *Config) { c.Workers = 0 }, errMsg: "workers must be at least 1"},
		{name: "output", mutate: func(c *Config) { c.Output = "xml" }, errMsg: "invalid output"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "loud" }, errMsg: "invalid log_level"},
		{name: "grammar", mutate: func(c *Config) { c.Grammars = []string{"cobol"} }, errMsg: "unknown grammar: cobol"},
		{name: "port", mutate: func(c *Config) { c.Server.Port = 70000 }, errMsg: "server.port out of range"},
		{name: "max body", mutate: func(c *Config) { c.Server.MaxBody = 0 }, errMsg: "server.max_body"},
		{name: "state path", mutate: func(c *Config) { c.StatePath = "" }, errMsg: "state_path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetConfig(context.Background())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, GetLogger(ctx), "falls back to a discard logger")

	cfg := &Config{Workers: 7}
	assert.Same(t, cfg, GetConfig(WithConfig(ctx, cfg)))
}
