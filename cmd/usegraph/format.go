package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// outputResult writes result to the command's stdout in the configured format.
func outputResult(cmd *cobra.Command, result CLIResult) error {
	return writeResult(cmd.OutOrStdout(), cfg.Format, result)
}

func writeResult(w io.Writer, format string, result CLIResult) error {
	switch format {
	case "text":
		return writeText(w, result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	case "dot":
		return writeDOT(w, result)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In json and yaml mode the error is written to
// stdout as a CLIResult envelope; otherwise it goes to stderr.
func outputError(cmd *cobra.Command, command string, err error) error {
	errorHandled = true
	format := "text"
	if cfg != nil {
		format = cfg.Format
	}
	if format == "json" || format == "yaml" {
		_ = writeResult(cmd.OutOrStdout(), format, CLIResult{Command: command, Error: err.Error()})
		return err
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	return err
}

// writeText dispatches to the text formatter for the result type.
func writeText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIEdge:
		formatEdgesText(w, v)
	case CLIUsageGraph:
		fmt.Fprintf(w, "%s\n\nUses:\n", v.File)
		formatEdgesText(w, v.Uses)
		fmt.Fprintf(w, "\nUsed by:\n")
		formatEdgesText(w, v.UsedBy)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

func formatEdgesText(w io.Writer, edges []CLIEdge) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tKIND")
	for _, e := range edges {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.From, e.To, e.Kind)
	}
	tw.Flush()
}

// writeDOT renders edges as a Graphviz digraph. A CLIUsageGraph highlights
// its center file.
func writeDOT(w io.Writer, result CLIResult) error {
	var edges []CLIEdge
	center := ""
	switch v := result.Results.(type) {
	case []CLIEdge:
		edges = v
	case CLIUsageGraph:
		center = v.File
		edges = append(append(edges, v.Uses...), v.UsedBy...)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for dot format: %T", v)
	}

	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	fmt.Fprintln(w, "digraph usages {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box];")
	if center != "" {
		fmt.Fprintf(w, "  %s [style=bold];\n", strconv.Quote(center))
	}
	for _, e := range edges {
		fmt.Fprintf(w, "  %s -> %s;\n", strconv.Quote(e.From), strconv.Quote(e.To))
	}
	fmt.Fprintln(w, "}")
	return nil
}
