package edge

import "fmt"

// Kind is the relationship kind of a file-to-file edge. The set is closed;
// only Use has a producer today.
type Kind uint8

const (
	Provide Kind = iota
	Implement
	Use
	Depend
)

// Kinds lists every kind in code order.
var Kinds = []Kind{Provide, Implement, Use, Depend}

// String returns the label that participates in edge identity.
func (k Kind) String() string {
	switch k {
	case Provide:
		return "Provide"
	case Implement:
		return "Implement"
	case Use:
		return "Use"
	case Depend:
		return "Depend"
	}
	return ""
}

// Code returns the small integer stored in the kind column.
func (k Kind) Code() uint8 {
	return uint8(k)
}

// Valid reports whether k is one of the four defined kinds.
func (k Kind) Valid() bool {
	return k <= Depend
}

// KindFromCode converts a stored kind column back into a Kind.
func KindFromCode(code uint8) (Kind, error) {
	k := Kind(code)
	if !k.Valid() {
		return 0, fmt.Errorf("edge: unknown kind code %d", code)
	}
	return k, nil
}

// ParseKind converts a label produced by Kind.String back into a Kind.
func ParseKind(label string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == label {
			return k, nil
		}
	}
	return 0, fmt.Errorf("edge: unknown kind %q", label)
}

// MarshalText encodes k as its label.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("edge: unknown kind code %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a label produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
