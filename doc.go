// Package usegraph builds a file-level dependency graph of a codebase: an
// edge A -> B of kind Use means a value binding or call in file A resolves to
// a symbol declared in file B of the same analysis unit.
//
// # Pipeline
//
// A run has three phases:
//
//  1. Load: a [Frontend] parses the project under a root directory and
//     returns one syntax tree per file plus a shared, read-only resolver.
//     The Go front end type-checks with go/packages; the tree-sitter front
//     end covers C#, Go, Java, JavaScript, TypeScript and Python with a
//     name-index resolver.
//
//  2. Walk: one walker per tree runs on a bounded worker pool. Every walker
//     inserts into the same run-scoped edge set; duplicates collapse on the
//     content-derived edge ID.
//
//  3. Persist: after all walkers finish the Engine hands the deduplicated
//     snapshot, together with the fingerprint -> path registry, to the
//     persistence port in a single insert-only transaction.
//
// # Usage
//
//	e, err := usegraph.New(".usegraph/index.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	res, err := e.Index(ctx, "path/to/project")
//
//	q := e.Query()
//	uses, err := q.Usages(ctx, "path/to/project/cart.go")
//
// # Identity
//
// Files are identified by the 64-bit FNV-1a hash of their path. An edge ID is
// the FNV-1a hash of the decimal From, the decimal To and the kind label
// concatenated, so re-running over an unchanged tree reproduces the same IDs
// and persistence can insert with ON CONFLICT DO NOTHING.
package usegraph
