package treesitter

import (
	"fmt"
	"sort"

	"github.com/jward/usegraph/internal/walker"
)

// resolver is a name-index resolver: a reference resolves to the file that
// declares its name in the same language. Names declared in the referencing
// file win; names declared in more than one other file are ambiguous and
// stay unresolved.
type resolver struct {
	unit  string
	names map[string]map[string][]string // language -> name -> declaring files
}

func newResolver(unit string, files []*sourceFile) *resolver {
	r := &resolver{unit: unit, names: make(map[string]map[string][]string)}
	for _, f := range files {
		byName := r.names[f.lang]
		if byName == nil {
			byName = make(map[string][]string)
			r.names[f.lang] = byName
		}
		for _, name := range f.decls {
			paths := byName[name]
			if len(paths) > 0 && paths[len(paths)-1] == f.path {
				continue
			}
			byName[name] = append(paths, f.path)
		}
	}
	for _, byName := range r.names {
		for _, paths := range byName {
			sort.Strings(paths)
		}
	}
	return r
}

func (r *resolver) Unit() string {
	return r.unit
}

// Resolve must be called from the goroutine walking n's file.
func (r *resolver) Resolve(n walker.Node) (*walker.Symbol, error) {
	nd, ok := n.(*node)
	if !ok {
		return nil, fmt.Errorf("treesitter: cannot resolve foreign node %T", n)
	}
	name := nd.file.referencedName(nd.n)
	if name == "" {
		return nil, nil
	}
	paths := r.names[nd.file.lang][name]

	var decl string
	switch {
	case contains(paths, nd.file.path):
		decl = nd.file.path
	case len(paths) == 1:
		decl = paths[0]
	default:
		return nil, nil
	}
	return &walker.Symbol{
		Name:      name,
		Unit:      r.unit,
		Locations: []walker.Location{{InSource: true, Path: decl}},
	}, nil
}

func contains(sorted []string, s string) bool {
	i := sort.SearchStrings(sorted, s)
	return i < len(sorted) && sorted[i] == s
}
