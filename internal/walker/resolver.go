package walker

// Resolver maps syntax nodes to declared symbols. Implementations wrap an
// immutable semantic snapshot and must be safe for concurrent Resolve calls.
type Resolver interface {
	// Unit returns the identity of the analysis unit being walked. Only
	// symbols declared in this unit produce edges.
	Unit() string

	// Resolve returns the symbol referenced by n. A nil symbol with a nil
	// error means the reference is unresolved. A non-nil error means the
	// resolver itself failed and the run must stop.
	Resolve(n Node) (*Symbol, error)
}

// Symbol is a resolved, named semantic entity.
type Symbol struct {
	Name      string
	Unit      string
	Locations []Location
}

// Location is one declaration site of a symbol. Path is empty when the
// location has no file (metadata-only or synthesized declarations).
type Location struct {
	InSource bool
	Path     string
}

// Project is what a front end hands to the orchestrator: every tree to walk
// and the one resolver they share.
type Project struct {
	Trees    []Tree
	Resolver Resolver
}
