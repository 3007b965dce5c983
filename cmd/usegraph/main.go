package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jward/usegraph"
	"github.com/jward/usegraph/internal/config"
	"github.com/jward/usegraph/internal/golang"
	"github.com/jward/usegraph/internal/store"
	"github.com/jward/usegraph/internal/treesitter"
)

var (
	v      = viper.New()
	cfg    *config.Config
	logger *slog.Logger
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "usegraph",
	Short:         "File-level usage graph of a codebase",
	Long:          "Usegraph walks every source file, resolves value bindings and calls to the files that declare them, and stores the resulting file-to-file edges in SQLite or PostgreSQL.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting cwd: %w", err)
		}
		c, err := config.Load(v, findRepoRoot(cwd))
		if err != nil {
			return err
		}
		cfg = c
		logger = cfg.Logger(os.Stderr)
		return nil
	},
	// No Run: prints help by default.
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "SQLite database path (default: .usegraph/index.db relative to repo root)")
	pf.String("driver", "sqlite", "storage driver: sqlite|postgres")
	pf.String("dsn", "", "PostgreSQL connection string (driver postgres)")
	pf.String("format", "json", "output format: json|text|yaml|dot")
	pf.String("log-level", "warn", "log level: debug|info|warn|error")

	bindFlag(config.KeyDB, pf.Lookup("db"))
	bindFlag(config.KeyDriver, pf.Lookup("driver"))
	bindFlag(config.KeyDSN, pf.Lookup("dsn"))
	bindFlag(config.KeyFormat, pf.Lookup("format"))
	bindFlag(config.KeyLogLevel, pf.Lookup("log-level"))

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(usagesCmd)
	rootCmd.AddCommand(edgesCmd)
}

var (
	flagForce       bool
	flagDryRun      bool
	flagTests       bool
	flagAllowErrors bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build the usage graph of a project",
	Long:  "Loads the project with the configured front end, walks every file in parallel, and inserts the discovered edges into the database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	f := indexCmd.Flags()
	f.String("frontend", "go", "front end: go|treesitter")
	f.Int("workers", 0, "concurrent walkers (default: number of CPUs)")
	f.String("languages", "", "comma-separated language filter for the treesitter front end (e.g. csharp,python)")
	f.BoolVar(&flagForce, "force", false, "delete the SQLite database before indexing")
	f.BoolVar(&flagDryRun, "dry-run", false, "print the edges instead of storing them")
	f.BoolVar(&flagTests, "tests", false, "include test files (go front end)")
	f.BoolVar(&flagAllowErrors, "allow-errors", false, "continue past package errors (go front end)")

	bindFlag(config.KeyFrontend, f.Lookup("frontend"))
	bindFlag(config.KeyWorkers, f.Lookup("workers"))
	bindFlag(config.KeyLanguages, f.Lookup("languages"))
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	repoRoot := findRepoRoot(targetDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []usegraph.Option{
		usegraph.WithFrontend(buildFrontend(cfg, logger)),
		usegraph.WithWorkers(cfg.Workers),
		usegraph.WithLogger(logger),
	}

	var engine *usegraph.Engine
	var target string
	if flagDryRun {
		engine, err = usegraph.NewWithStore(store.NewMemoryStore(), opts...)
		target = "(dry run)"
	} else {
		engine, target, err = openEngine(repoRoot, opts)
	}
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	res, err := engine.Index(ctx, targetDir)
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %s in %s (%d files, %d edges)\n",
		targetDir, time.Since(start).Round(time.Millisecond), res.Files, len(res.Edges))
	fmt.Fprintf(os.Stderr, "Database: %s\n", target)

	if flagDryRun {
		usages, err := engine.Query().Edges(ctx)
		if err != nil {
			return outputError(cmd, "index", err)
		}
		return outputResult(cmd, CLIResult{Command: "index", Results: usagesToCLI(usages)})
	}
	return nil
}

// openEngine opens the configured database for writing, creating the SQLite
// file's directory if needed.
func openEngine(repoRoot string, opts []usegraph.Option) (*usegraph.Engine, string, error) {
	if cfg.Driver == store.DriverPostgres {
		e, err := usegraph.Open(store.DriverPostgres, cfg.DSN, opts...)
		return e, "postgres", err
	}

	dbPath := resolveDBPath(repoRoot, cfg.DB)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("removing database for --force: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared database: %s\n", dbPath)
	}
	e, err := usegraph.New(dbPath, opts...)
	return e, dbPath, err
}

func buildFrontend(c *config.Config, logger *slog.Logger) usegraph.Frontend {
	if c.Frontend == "treesitter" {
		return treesitter.New(
			treesitter.WithLanguages(c.Languages...),
			treesitter.WithWorkers(c.Workers),
			treesitter.WithLogger(logger),
		)
	}
	return golang.New(
		golang.WithTests(flagTests),
		golang.WithAllowErrors(flagAllowErrors),
		golang.WithLogger(logger),
	)
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the SQLite path from the db setting or the default.
func resolveDBPath(repoRoot, db string) string {
	if db != "" {
		if filepath.IsAbs(db) {
			return db
		}
		return filepath.Join(repoRoot, db)
	}
	return filepath.Join(repoRoot, ".usegraph", "index.db")
}
