package store

// File is a files registry row: a path and the fingerprint edges refer to it
// by.
type File struct {
	Fingerprint uint64 `json:"fingerprint,string" yaml:"fingerprint"`
	Path        string `json:"path" yaml:"path"`
}
