// Package edge defines file-to-file dependency edges, their content-addressed
// identity, and the concurrent insert-only set that collects them during a run.
package edge

import (
	"fmt"
	"strconv"
)

// Edge is a directed relationship between the file containing a use (From)
// and the file containing the used declaration (To). From and To are path
// fingerprints; ID is derived from (From, To, Kind).
type Edge struct {
	ID   uint64 `json:"id,string" yaml:"id"`
	From uint64 `json:"from,string" yaml:"from"`
	To   uint64 `json:"to,string" yaml:"to"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// New builds the edge from usagePath to declPath. Callers are responsible
// for rejecting usagePath == declPath before inserting.
func New(usagePath, declPath string, kind Kind) Edge {
	return FromFingerprints(Hash(usagePath), Hash(declPath), kind)
}

// FromFingerprints builds an edge from already-hashed endpoints.
func FromFingerprints(from, to uint64, kind Kind) Edge {
	return Edge{
		ID:   Identity(from, to, kind),
		From: from,
		To:   to,
		Kind: kind,
	}
}

// Verify reports an error when e.ID does not match its own triple.
func (e Edge) Verify() error {
	if want := Identity(e.From, e.To, e.Kind); e.ID != want {
		return fmt.Errorf("edge: id %d does not match (%d, %d, %s): want %d", e.ID, e.From, e.To, e.Kind, want)
	}
	return nil
}

// Row is the persisted shape of an edge: 64-bit values as decimal strings
// that fit a numeric(20,0) column, plus the kind code.
type Row struct {
	ID   string
	From string
	To   string
	Kind uint8
}

// Row encodes e for persistence.
func (e Edge) Row() Row {
	return Row{
		ID:   strconv.FormatUint(e.ID, 10),
		From: strconv.FormatUint(e.From, 10),
		To:   strconv.FormatUint(e.To, 10),
		Kind: e.Kind.Code(),
	}
}

// Edge decodes a persisted row.
func (r Row) Edge() (Edge, error) {
	id, err := strconv.ParseUint(r.ID, 10, 64)
	if err != nil {
		return Edge{}, fmt.Errorf("edge: parse id: %w", err)
	}
	from, err := strconv.ParseUint(r.From, 10, 64)
	if err != nil {
		return Edge{}, fmt.Errorf("edge: parse from: %w", err)
	}
	to, err := strconv.ParseUint(r.To, 10, 64)
	if err != nil {
		return Edge{}, fmt.Errorf("edge: parse to: %w", err)
	}
	kind, err := KindFromCode(r.Kind)
	if err != nil {
		return Edge{}, err
	}
	return Edge{ID: id, From: from, To: to, Kind: kind}, nil
}
