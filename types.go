package usegraph

import (
	"github.com/jward/usegraph/internal/edge"
	"github.com/jward/usegraph/internal/store"
	"github.com/jward/usegraph/internal/walker"
)

// Public type aliases for internal types used in the Engine and QueryBuilder
// APIs. These are Go type aliases (=), identical to the internal types at
// compile time.

type Edge = edge.Edge
type EdgeKind = edge.Kind
type Project = walker.Project
type Tree = walker.Tree
type Store = store.Store
type DataStore = store.DataStore
type File = store.File

// Edge kinds.
const (
	Provide   = edge.Provide
	Implement = edge.Implement
	Use       = edge.Use
	Depend    = edge.Depend
)
