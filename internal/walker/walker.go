package walker

import (
	"fmt"

	"github.com/jward/usegraph/internal/edge"
)

// Walk visits every node of tree and inserts a Use edge into sink for each
// eligible cross-file reference found at value bindings and calls. It reads
// tree and res only. The only error it returns is a resolver failure.
func Walk(tree Tree, res Resolver, sink Sink) error {
	if tree.Root == nil {
		return nil
	}
	w := walk{path: tree.Path, unit: res.Unit(), res: res, sink: sink}
	if err := w.visit(tree.Root); err != nil {
		return fmt.Errorf("walk %s: %w", tree.Path, err)
	}
	return nil
}

type walk struct {
	path string
	unit string
	res  Resolver
	sink Sink
}

func (w *walk) visit(n Node) error {
	switch n.Kind() {
	case NodeValueBinding:
		for _, init := range n.Initializers() {
			if err := w.use(init); err != nil {
				return err
			}
		}
	case NodeCall:
		if err := w.use(n); err != nil {
			return err
		}
	}

	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		if err := w.visit(child); err != nil {
			return err
		}
	}
	return nil
}

// use resolves n and records an edge from the walked file to the symbol's
// declaring file.
func (w *walk) use(n Node) error {
	if n == nil {
		return nil
	}
	sym, err := w.res.Resolve(n)
	if err != nil {
		return err
	}
	if !Eligible(sym, w.unit) {
		return nil
	}
	to, _ := DeclarationPath(sym)
	if to == w.path {
		return nil
	}
	w.sink.Insert(edge.New(w.path, to, edge.Use))
	return nil
}
