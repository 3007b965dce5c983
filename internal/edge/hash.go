package edge

import "strconv"

// FNV-1a 64-bit parameters. Identity depends on these exact values.
const (
	offsetBasis uint64 = 14695981039346656037
	prime       uint64 = 1099511628211
)

// Hash returns the FNV-1a 64-bit fingerprint of the UTF-8 bytes of s.
func Hash(s string) uint64 {
	h := offsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

// Identity computes the content-addressed edge ID:
// Hash(decimal(from) + decimal(to) + kind label).
func Identity(from, to uint64, kind Kind) uint64 {
	buf := make([]byte, 0, 2*20+len("Implement"))
	buf = strconv.AppendUint(buf, from, 10)
	buf = strconv.AppendUint(buf, to, 10)
	buf = append(buf, kind.String()...)
	return Hash(string(buf))
}
