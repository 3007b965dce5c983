package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// =============================================================================
// Sources and precedence
// =============================================================================

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Driver:   "sqlite",
		Frontend: "go",
		Format:   "json",
		LogLevel: "warn",
	}, cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, ".usegraph.yaml", `
db: data/graph.db
frontend: treesitter
workers: 4
languages: [csharp, python]
format: yaml
log_level: debug
`)

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "data/graph.db", cfg.DB)
	assert.Equal(t, "treesitter", cfg.Frontend)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"csharp", "python"}, cfg.Languages)
	assert.Equal(t, "yaml", cfg.Format)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, ".usegraph.yaml", "frontend: [unterminated\n")

	_, err := Load(viper.New(), dir)
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".usegraph.yaml", "frontend: go\nworkers: 2\n")
	t.Setenv("USEGRAPH_FRONTEND", "treesitter")
	t.Setenv("USEGRAPH_LANGUAGES", "go, javascript")

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "treesitter", cfg.Frontend)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{"go", "javascript"}, cfg.Languages)
}

func TestLoad_DotEnv(t *testing.T) {
	// t.Setenv registers the restore; Unsetenv lets godotenv fill the value.
	t.Setenv("USEGRAPH_DSN", "")
	require.NoError(t, os.Unsetenv("USEGRAPH_DSN"))
	t.Setenv("USEGRAPH_DRIVER", "")
	require.NoError(t, os.Unsetenv("USEGRAPH_DRIVER"))

	dir := t.TempDir()
	writeFile(t, dir, ".env", "USEGRAPH_DRIVER=postgres\nUSEGRAPH_DSN=postgres://u:p@localhost/graph\n")

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "postgres://u:p@localhost/graph", cfg.DSN)
}

func TestLoad_FlagsWin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".usegraph.yaml", "format: yaml\n")
	t.Setenv("USEGRAPH_FORMAT", "text")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "json", "")
	require.NoError(t, flags.Parse([]string{"--format", "dot"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag(KeyFormat, flags.Lookup("format")))

	cfg, err := Load(v, dir)
	require.NoError(t, err)
	assert.Equal(t, "dot", cfg.Format)
}

// =============================================================================
// Validation
// =============================================================================

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := func() *Config {
		return &Config{Driver: "sqlite", Frontend: "go", Format: "json", LogLevel: "info"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Driver = "mysql" }, "invalid driver"},
		{"postgres without dsn", func(c *Config) { c.Driver = "postgres" }, "requires dsn"},
		{"postgres with dsn", func(c *Config) { c.Driver = "postgres"; c.DSN = "postgres://x" }, ""},
		{"unknown frontend", func(c *Config) { c.Frontend = "roslyn" }, "invalid frontend"},
		{"unknown format", func(c *Config) { c.Format = "xml" }, "invalid format"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := (&Config{LogLevel: "error"}).Logger(&buf)
	logger.Warn("hidden")
	logger.Error("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "k=v")
}
