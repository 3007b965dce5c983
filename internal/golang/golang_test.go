package golang

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/jward/usegraph/internal/edge"
	"github.com/jward/usegraph/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGo(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
}

// writeModule creates a module in a temp dir and returns its resolved path.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	files["go.mod"] = "module example.com/shop\n\ngo 1.22\n"
	for name, src := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	}
	return dir
}

const cartSrc = `package shop

import "strings"

var defaultCart = NewCart()

type Cart struct{ items []Item }

func NewCart() *Cart { return &Cart{} }

func (c *Cart) Add(name string) {
	it := Item{Name: strings.TrimSpace(name)}
	c.items = append(c.items, it)
	c.recount()
}

func (c *Cart) recount() {}
`

const itemSrc = `package shop

type Item struct{ Name string }

func Price(i Item) int { return len(i.Name) }
`

const checkoutSrc = `package shop

import "strings"

func Checkout(c *Cart) int {
	total := 0
	for _, it := range c.items {
		total += Price(it)
	}
	names := Map[string](nil, strings.ToUpper)
	_ = names
	fee := Fee()
	return total + fee
}

func Fee() int { return 1 }
`

const utilSrc = `package shop

func Map[T any](xs []T, f func(T) T) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		out = append(out, f(x))
	}
	return out
}
`

func loadShop(t *testing.T) (string, *walker.Project) {
	t.Helper()
	requireGo(t)
	dir := writeModule(t, map[string]string{
		"cart.go":     cartSrc,
		"item.go":     itemSrc,
		"checkout.go": checkoutSrc,
		"util.go":     utilSrc,
	})
	p, err := New().Load(context.Background(), dir)
	require.NoError(t, err)
	return dir, p
}

func walkAll(t *testing.T, p *walker.Project) *edge.Set {
	t.Helper()
	set := edge.NewSet()
	for _, tree := range p.Trees {
		require.NoError(t, walker.Walk(tree, p.Resolver, set))
	}
	return set
}

func TestLoad_TreesAndUnit(t *testing.T) {
	t.Parallel()
	dir, p := loadShop(t)

	assert.Equal(t, "example.com/shop", p.Resolver.Unit())
	var paths []string
	for _, tree := range p.Trees {
		paths = append(paths, tree.Path)
	}
	assert.Equal(t, []string{
		filepath.Join(dir, "cart.go"),
		filepath.Join(dir, "checkout.go"),
		filepath.Join(dir, "item.go"),
		filepath.Join(dir, "util.go"),
	}, paths)
}

func TestLoad_CrossFileUseEdges(t *testing.T) {
	t.Parallel()
	dir, p := loadShop(t)
	set := walkAll(t, p)

	cart := filepath.Join(dir, "cart.go")
	item := filepath.Join(dir, "item.go")
	checkout := filepath.Join(dir, "checkout.go")
	util := filepath.Join(dir, "util.go")

	want := edge.NewSet()
	want.Insert(edge.New(cart, item, edge.Use))     // it := Item{...}
	want.Insert(edge.New(checkout, item, edge.Use)) // Price(it)
	want.Insert(edge.New(checkout, util, edge.Use)) // Map[string](...)
	assert.Equal(t, want.Edges(), set.Edges())
}

func TestLoad_DeterministicAcrossRuns(t *testing.T) {
	t.Parallel()
	_, p := loadShop(t)
	first := walkAll(t, p).Edges()
	require.NotEmpty(t, first)
	for range 3 {
		assert.Equal(t, first, walkAll(t, p).Edges())
	}
}

func TestLoad_PackageErrorsAreFatal(t *testing.T) {
	t.Parallel()
	requireGo(t)
	dir := writeModule(t, map[string]string{
		"bad.go": "package shop\n\nvar x int = \"not an int\"\n",
	})

	_, err := New().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package error")
}

func TestLoad_AllowErrorsContinues(t *testing.T) {
	t.Parallel()
	requireGo(t)
	dir := writeModule(t, map[string]string{
		"bad.go":  "package shop\n\nvar x int = \"not an int\"\n\nvar y = Helper()\n",
		"help.go": "package shop\n\nfunc Helper() int { return 1 }\n",
	})

	p, err := New(WithAllowErrors(true)).Load(context.Background(), dir)
	require.NoError(t, err)
	set := walkAll(t, p)

	edges := set.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, edge.New(filepath.Join(dir, "bad.go"), filepath.Join(dir, "help.go"), edge.Use), edges[0])
}

func TestResolve_ForeignNodeIsAnError(t *testing.T) {
	t.Parallel()
	r := &resolver{}
	_, err := r.Resolve(nil)
	require.Error(t, err)
}

// =============================================================================
// Node classification (syntax only)
// =============================================================================

func parseSnippet(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "snippet.go", src, 0)
	require.NoError(t, err)
	return f
}

func collectKinds(n walker.Node, kinds map[walker.NodeKind]int) {
	kinds[n.Kind()]++
	for _, c := range n.Children() {
		collectKinds(c, kinds)
	}
}

func TestNode_Kinds(t *testing.T) {
	t.Parallel()
	f := parseSnippet(t, `package p

var a, b = f(), g()
var c int
const d = 1

func h() {
	x := f()
	x = g()
	var y = x
	_ = y
}
`)
	kinds := map[walker.NodeKind]int{}
	collectKinds(wrap(f, &pkgScope{}), kinds)

	// a,b / d / x := / var y
	assert.Equal(t, 4, kinds[walker.NodeValueBinding])
	// f() g() f() g()
	assert.Equal(t, 4, kinds[walker.NodeCall])
}

func TestNode_Initializers(t *testing.T) {
	t.Parallel()
	f := parseSnippet(t, "package p\n\nvar a, b = f(), g()\nvar c int\n")
	gen := f.Decls[0].(*ast.GenDecl)
	spec := wrap(gen.Specs[0], &pkgScope{})
	assert.Equal(t, walker.NodeValueBinding, spec.Kind())
	assert.Len(t, spec.Initializers(), 2)

	noInit := wrap(f.Decls[1].(*ast.GenDecl).Specs[0], &pkgScope{})
	assert.Equal(t, walker.NodeOther, noInit.Kind())
	assert.Empty(t, noInit.Initializers())
}

func TestNode_ChildrenAreDirect(t *testing.T) {
	t.Parallel()
	f := parseSnippet(t, "package p\n\nfunc h() { f(g()) }\n")
	fn := f.Decls[0].(*ast.FuncDecl)
	call := fn.Body.List[0].(*ast.ExprStmt).X.(*ast.CallExpr)

	children := wrap(call, &pkgScope{}).Children()
	// Fun ident and one argument; the nested call is not flattened.
	require.Len(t, children, 2)
	assert.Equal(t, walker.NodeOther, children[0].Kind())
	assert.Equal(t, walker.NodeCall, children[1].Kind())
}
