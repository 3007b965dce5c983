package golang

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"

	"github.com/jward/usegraph/internal/walker"
)

// resolver answers symbol queries from the type information of one
// packages.Load call. It is read-only after construction.
type resolver struct {
	fset    *token.FileSet
	unit    string
	modules map[string]string // package path -> module path
	sources map[string]bool   // files of the loaded root packages
}

func newResolver(roots []*packages.Package) *resolver {
	r := &resolver{
		modules: make(map[string]string),
		sources: make(map[string]bool),
	}
	packages.Visit(roots, nil, func(p *packages.Package) {
		if p.Module != nil {
			r.modules[p.PkgPath] = p.Module.Path
		}
	})
	for _, p := range roots {
		if r.fset == nil && p.Fset != nil {
			r.fset = p.Fset
		}
		if r.unit == "" && p.Module != nil {
			r.unit = p.Module.Path
		}
		for _, f := range p.CompiledGoFiles {
			r.sources[f] = true
		}
	}
	return r
}

func (r *resolver) Unit() string {
	return r.unit
}

func (r *resolver) Resolve(n walker.Node) (*walker.Symbol, error) {
	nd, ok := n.(*node)
	if !ok {
		return nil, fmt.Errorf("golang: cannot resolve foreign node %T", n)
	}
	info := nd.scope.info
	if info == nil {
		return nil, nil
	}

	var obj types.Object
	switch nd.Kind() {
	case walker.NodeCall:
		obj = callee(info, nd.n.(*ast.CallExpr))
	default:
		if e, ok := nd.n.(ast.Expr); ok {
			obj = referenced(info, e)
		}
	}
	return r.symbol(obj), nil
}

// symbol describes obj's declaration. Universe objects and objects without a
// position resolve to nil.
func (r *resolver) symbol(obj types.Object) *walker.Symbol {
	if obj == nil || obj.Pkg() == nil || !obj.Pos().IsValid() || r.fset == nil {
		return nil
	}
	pkgPath := obj.Pkg().Path()
	path := r.fset.Position(obj.Pos()).Filename
	return &walker.Symbol{
		Name: pkgPath + "." + obj.Name(),
		Unit: r.modules[pkgPath],
		Locations: []walker.Location{{
			InSource: r.sources[path],
			Path:     path,
		}},
	}
}

// callee returns the function invoked by call. Builtins and type
// conversions are not callables and yield nil.
func callee(info *types.Info, call *ast.CallExpr) types.Object {
	id := identOf(call.Fun)
	if id == nil {
		return nil
	}
	switch obj := info.Uses[id].(type) {
	case *types.Func:
		return obj
	case *types.Var:
		if _, ok := obj.Type().Underlying().(*types.Signature); ok {
			return obj
		}
	}
	return nil
}

// referenced returns the object an initializer expression refers to: the
// callee of a call, the type of a composite literal, or the named identifier
// or selector.
func referenced(info *types.Info, e ast.Expr) types.Object {
	for {
		switch x := e.(type) {
		case *ast.ParenExpr:
			e = x.X
		case *ast.StarExpr:
			e = x.X
		case *ast.UnaryExpr:
			if x.Op != token.AND {
				return nil
			}
			e = x.X
		case *ast.CallExpr:
			return callee(info, x)
		case *ast.CompositeLit:
			if x.Type == nil {
				return nil
			}
			e = x.Type
		case *ast.IndexExpr:
			e = x.X
		case *ast.IndexListExpr:
			e = x.X
		case *ast.SelectorExpr:
			return info.Uses[x.Sel]
		case *ast.Ident:
			return info.Uses[x]
		default:
			return nil
		}
	}
}

// identOf strips parens and generic instantiation from a callee expression
// and returns the identifier naming it.
func identOf(e ast.Expr) *ast.Ident {
	for {
		switch x := e.(type) {
		case *ast.ParenExpr:
			e = x.X
		case *ast.IndexExpr:
			e = x.X
		case *ast.IndexListExpr:
			e = x.X
		case *ast.SelectorExpr:
			return x.Sel
		case *ast.Ident:
			return x
		default:
			return nil
		}
	}
}
