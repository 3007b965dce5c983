// Package walker discovers cross-file "use" edges in a single syntax tree.
//
// The walker only knows two construct kinds: value bindings, whose
// initializer expressions are resolved, and calls, whose callee is resolved.
// Front ends adapt their concrete syntax trees to [Node] and provide a
// [Resolver]; the walker never parses or type-checks anything itself.
package walker

import "github.com/jward/usegraph/internal/edge"

// NodeKind classifies a syntax node for dispatch.
type NodeKind int

const (
	// NodeOther is any node the walker only descends through.
	NodeOther NodeKind = iota
	// NodeValueBinding binds one or more names to initializer expressions.
	NodeValueBinding
	// NodeCall invokes a callable.
	NodeCall
)

func (k NodeKind) String() string {
	switch k {
	case NodeValueBinding:
		return "value_binding"
	case NodeCall:
		return "call"
	default:
		return "other"
	}
}

// Node is a front-end syntax node as seen by the walker.
type Node interface {
	Kind() NodeKind
	// Children returns the direct children in source order.
	Children() []Node
	// Initializers returns the initializer expressions of a value binding.
	// Nil for every other kind and for bindings without initializers.
	Initializers() []Node
}

// Tree is one file's syntax tree.
type Tree struct {
	Path string
	Root Node
}

// Sink receives the edges a walker discovers. *edge.Set implements it.
type Sink interface {
	Insert(e edge.Edge) bool
}

var _ Sink = (*edge.Set)(nil)
