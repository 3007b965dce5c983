// Package config loads usegraph settings from, in increasing precedence: built-in
// defaults, an optional .usegraph.yaml, a .env file, USEGRAPH_* environment
// variables, and command-line flags bound to the viper instance.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys, shared by the config file, USEGRAPH_<KEY> variables and flags.
const (
	KeyDB        = "db"
	KeyDriver    = "driver"
	KeyDSN       = "dsn"
	KeyFrontend  = "frontend"
	KeyWorkers   = "workers"
	KeyLanguages = "languages"
	KeyFormat    = "format"
	KeyLogLevel  = "log_level"
)

// Accepted values.
var (
	Drivers   = []string{"sqlite", "postgres"}
	Frontends = []string{"go", "treesitter"}
	Formats   = []string{"json", "text", "yaml", "dot"}
)

// Config holds the resolved settings.
type Config struct {
	DB        string   // SQLite path; empty means the default under the repo root
	Driver    string   // sqlite or postgres
	DSN       string   // PostgreSQL connection string
	Frontend  string   // go or treesitter
	Workers   int      // 0 means runtime.NumCPU()
	Languages []string // tree-sitter language filter; empty means all
	Format    string
	LogLevel  string
}

// Load reads configuration for a project rooted at root into v. Flags bound
// to v with BindPFlag take precedence over everything else.
func Load(v *viper.Viper, root string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v.SetDefault(KeyDriver, "sqlite")
	v.SetDefault(KeyFrontend, "go")
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyFormat, "json")
	v.SetDefault(KeyLogLevel, "warn")

	v.SetConfigName(".usegraph")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)
	v.AddConfigPath(".")

	v.SetEnvPrefix("USEGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{
		DB:        v.GetString(KeyDB),
		Driver:    strings.ToLower(strings.TrimSpace(v.GetString(KeyDriver))),
		DSN:       strings.TrimSpace(v.GetString(KeyDSN)),
		Frontend:  strings.ToLower(strings.TrimSpace(v.GetString(KeyFrontend))),
		Workers:   v.GetInt(KeyWorkers),
		Languages: splitList(v.GetStringSlice(KeyLanguages)),
		Format:    strings.ToLower(strings.TrimSpace(v.GetString(KeyFormat))),
		LogLevel:  strings.TrimSpace(v.GetString(KeyLogLevel)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and required combinations.
func (c *Config) Validate() error {
	if !slices.Contains(Drivers, c.Driver) {
		return fmt.Errorf("config: invalid driver %q: must be %s", c.Driver, strings.Join(Drivers, " or "))
	}
	if c.Driver == "postgres" && c.DSN == "" {
		return fmt.Errorf("config: driver postgres requires %s", KeyDSN)
	}
	if !slices.Contains(Frontends, c.Frontend) {
		return fmt.Errorf("config: invalid frontend %q: must be %s", c.Frontend, strings.Join(Frontends, " or "))
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("config: invalid format %q: must be one of %s", c.Format, strings.Join(Formats, ", "))
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// splitList accepts both YAML lists and comma-separated strings.
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
