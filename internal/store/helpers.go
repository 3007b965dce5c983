package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jward/usegraph/internal/edge"
)

// bind rewrites ? placeholders to $1, $2, ... for positional dialects.
// Queries in this package never contain a literal '?'.
func (d *dialect) bind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// u64 formats a fingerprint or ID as the decimal text the columns hold.
func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func sortEdges(edges []edge.Edge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
}

// sortedFingerprints returns the keys of paths in ascending order, so bulk
// inserts touch rows in a stable order.
func sortedFingerprints(paths map[uint64]string) []uint64 {
	keys := make([]uint64, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
