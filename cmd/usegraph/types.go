package main

import "github.com/jward/usegraph"

// CLIResult is the top-level envelope for all commands.
type CLIResult struct {
	Command string `json:"command" yaml:"command"`
	Results any    `json:"results" yaml:"results"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CLIEdge is an output-friendly edge with both endpoints as paths.
type CLIEdge struct {
	ID   string `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Kind string `json:"kind" yaml:"kind"`
}

// CLIUsageGraph is one file with its neighbours in both directions.
type CLIUsageGraph struct {
	File   string    `json:"file" yaml:"file"`
	Uses   []CLIEdge `json:"uses" yaml:"uses"`
	UsedBy []CLIEdge `json:"used_by" yaml:"used_by"`
}

func usagesToCLI(usages []usegraph.Usage) []CLIEdge {
	out := make([]CLIEdge, 0, len(usages))
	for _, u := range usages {
		out = append(out, CLIEdge{
			ID:   formatID(u.ID),
			From: u.From,
			To:   u.To,
			Kind: u.Kind.String(),
		})
	}
	return out
}
