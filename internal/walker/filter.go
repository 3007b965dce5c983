package walker

// Eligible reports whether sym may produce an edge when walking unit. A
// symbol qualifies when it is resolved, belongs to unit, and has at least one
// declaration with a source file.
func Eligible(sym *Symbol, unit string) bool {
	if sym == nil {
		return false
	}
	if sym.Unit != unit {
		return false
	}
	_, ok := DeclarationPath(sym)
	return ok
}

// DeclarationPath returns the file of the first in-source declaration.
func DeclarationPath(sym *Symbol) (string, bool) {
	if sym == nil {
		return "", false
	}
	for _, loc := range sym.Locations {
		if loc.InSource && loc.Path != "" {
			return loc.Path, true
		}
	}
	return "", false
}
