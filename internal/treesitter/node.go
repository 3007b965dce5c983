package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/usegraph/internal/walker"
)

// sourceFile is one parsed file. A sitter.Tree caches node wrappers in an
// unsynchronized map, so a file's nodes must only be touched by one goroutine
// at a time.
type sourceFile struct {
	path    string
	lang    string
	src     []byte
	tree    *sitter.Tree
	profile *Profile
	decls   []string
}

// node adapts a tree-sitter node to walker.Node.
type node struct {
	n    *sitter.Node
	file *sourceFile
}

func (f *sourceFile) root() walker.Node {
	return &node{n: f.tree.RootNode(), file: f}
}

func (n *node) Kind() walker.NodeKind {
	t := n.n.Type()
	if _, ok := n.file.profile.Bindings[t]; ok {
		return walker.NodeValueBinding
	}
	if _, ok := n.file.profile.Calls[t]; ok {
		return walker.NodeCall
	}
	return walker.NodeOther
}

// Children returns the named children; anonymous tokens carry no references.
func (n *node) Children() []walker.Node {
	count := int(n.n.NamedChildCount())
	out := make([]walker.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.n.NamedChild(i); c != nil {
			out = append(out, &node{n: c, file: n.file})
		}
	}
	return out
}

func (n *node) Initializers() []walker.Node {
	field, ok := n.file.profile.Bindings[n.n.Type()]
	if !ok {
		return nil
	}
	var values []*sitter.Node
	if field != "" {
		if v := n.n.ChildByFieldName(field); v != nil {
			values = append(values, v)
		}
	} else {
		values = valueAfterEquals(n.n)
	}

	var out []walker.Node
	for _, v := range values {
		if n.file.profile.Lists[v.Type()] {
			for i := 0; i < int(v.NamedChildCount()); i++ {
				out = append(out, &node{n: v.NamedChild(i), file: n.file})
			}
			continue
		}
		out = append(out, &node{n: v, file: n.file})
	}
	return out
}

// valueAfterEquals finds an initializer that has no field name of its own.
// Older C# grammars wrap it in an equals_value_clause, newer ones place it
// after a bare "=" token.
func valueAfterEquals(n *sitter.Node) []*sitter.Node {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.Type() == "equals_value_clause" {
			if c.NamedChildCount() > 0 {
				return []*sitter.Node{c.NamedChild(0)}
			}
			return nil
		}
		if c.Type() == "=" && !c.IsNamed() {
			for j := i + 1; j < count; j++ {
				if v := n.Child(j); v != nil && v.IsNamed() {
					return []*sitter.Node{v}
				}
			}
			return nil
		}
	}
	return nil
}

// maxRefDepth bounds the unwrapping in referencedName.
const maxRefDepth = 32

// referencedName follows calls and wrapper expressions down to the name they
// refer to. It returns "" when n does not name anything.
func (f *sourceFile) referencedName(n *sitter.Node) string {
	p := f.profile
	for depth := 0; n != nil && depth < maxRefDepth; depth++ {
		t := n.Type()
		if p.Idents[t] {
			return n.Content(f.src)
		}
		field, ok := p.Calls[t]
		if !ok {
			field, ok = p.Refs[t]
		}
		if !ok {
			return ""
		}
		if field == "" {
			if n.NamedChildCount() == 0 {
				return ""
			}
			n = n.NamedChild(0)
			continue
		}
		n = n.ChildByFieldName(field)
	}
	return ""
}

// declarations lists the names this file declares, in source order.
func (f *sourceFile) declarations() []string {
	var names []string
	var visit func(n *sitter.Node, local bool)
	visit = func(n *sitter.Node, local bool) {
		if d, ok := f.profile.Decls[n.Type()]; ok && !(d.TopLevel && local) {
			for i := 0; i < int(n.ChildCount()); i++ {
				if n.FieldNameForChild(i) != d.Field {
					continue
				}
				if c := n.Child(i); c != nil && f.profile.Idents[c.Type()] {
					names = append(names, c.Content(f.src))
				}
			}
		}
		local = local || f.profile.Scopes[n.Type()]
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil {
				visit(c, local)
			}
		}
	}
	visit(f.tree.RootNode(), false)
	return names
}
