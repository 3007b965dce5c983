package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/usegraph"
	"github.com/jward/usegraph/internal/store"
)

var flagReverse bool

var usagesCmd = &cobra.Command{
	Use:   "usages <file>",
	Short: "List the files a file uses, or with --reverse the files using it",
	Long:  "Lists outgoing edges of a file, or incoming edges with --reverse. With --format dot, renders the file and its neighbours in both directions as a Graphviz digraph.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsages,
}

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "List every stored edge",
	Args:  cobra.NoArgs,
	RunE:  runEdges,
}

func init() {
	usagesCmd.Flags().BoolVar(&flagReverse, "reverse", false, "list the files that use <file>")
}

func runUsages(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError(cmd, "usages", err)
	}
	defer s.Close()

	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError(cmd, "usages", err)
	}

	ctx := context.Background()
	qb := usegraph.NewQueryBuilder(s)

	if cfg.Format == "dot" {
		uses, err := qb.Usages(ctx, file)
		if err != nil {
			return outputError(cmd, "usages", err)
		}
		usedBy, err := qb.UsedBy(ctx, file)
		if err != nil {
			return outputError(cmd, "usages", err)
		}
		return outputResult(cmd, CLIResult{
			Command: "usages",
			Results: CLIUsageGraph{File: file, Uses: usagesToCLI(uses), UsedBy: usagesToCLI(usedBy)},
		})
	}

	query, command := qb.Usages, "usages"
	if flagReverse {
		query, command = qb.UsedBy, "used-by"
	}
	usages, err := query(ctx, file)
	if err != nil {
		return outputError(cmd, command, err)
	}
	return outputResult(cmd, CLIResult{Command: command, Results: usagesToCLI(usages)})
}

func runEdges(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError(cmd, "edges", err)
	}
	defer s.Close()

	usages, err := usegraph.NewQueryBuilder(s).Edges(context.Background())
	if err != nil {
		return outputError(cmd, "edges", err)
	}
	return outputResult(cmd, CLIResult{Command: "edges", Results: usagesToCLI(usages)})
}

// openStore opens the configured database for reading.
func openStore() (*store.Store, error) {
	if cfg.Driver == store.DriverPostgres {
		s, err := store.NewPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd), cfg.DB)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'usegraph index' first)", dbPath)
	}
	return store.NewStore(dbPath)
}

// resolveFilePath converts a file argument to an absolute path.
func resolveFilePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return filepath.Clean(file), nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	return abs, nil
}
