package golang

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/jward/usegraph/internal/walker"
)

// pkgScope carries the type information of the package a node belongs to.
type pkgScope struct {
	info *types.Info
}

// node adapts an ast.Node to walker.Node.
type node struct {
	n     ast.Node
	scope *pkgScope
}

func wrap(n ast.Node, scope *pkgScope) *node {
	return &node{n: n, scope: scope}
}

func (n *node) Kind() walker.NodeKind {
	switch x := n.n.(type) {
	case *ast.ValueSpec:
		if len(x.Values) > 0 {
			return walker.NodeValueBinding
		}
	case *ast.AssignStmt:
		if x.Tok == token.DEFINE {
			return walker.NodeValueBinding
		}
	case *ast.CallExpr:
		return walker.NodeCall
	}
	return walker.NodeOther
}

func (n *node) Initializers() []walker.Node {
	var exprs []ast.Expr
	switch x := n.n.(type) {
	case *ast.ValueSpec:
		exprs = x.Values
	case *ast.AssignStmt:
		if x.Tok != token.DEFINE {
			return nil
		}
		exprs = x.Rhs
	default:
		return nil
	}
	out := make([]walker.Node, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, wrap(e, n.scope))
	}
	return out
}

// Children returns the direct ast children of n.
func (n *node) Children() []walker.Node {
	var out []walker.Node
	ast.Inspect(n.n, func(c ast.Node) bool {
		if c == nil {
			return false
		}
		if c == n.n {
			return true
		}
		out = append(out, wrap(c, n.scope))
		return false
	})
	return out
}
