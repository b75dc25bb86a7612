package sources

import (
	"path/filepath"
	"strings"
)

// Kind is a supported database file format.
type Kind string

const (
	KindMMDB           Kind = "mmdb"
	KindIP2LocationBIN Kind = "ip2location_bin"
	KindUnknown        Kind = "unknown"
)

// ParseKind maps a configuration string onto a Kind. Anything
// unrecognized is KindUnknown.
func ParseKind(value string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindMMDB:
		return KindMMDB
	case KindIP2LocationBIN:
		return KindIP2LocationBIN
	}

	return KindUnknown
}

// GuessKind guesses a database format from its file extension.
func GuessKind(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mmdb":
		return KindMMDB
	case ".bin", ".dat":
		return KindIP2LocationBIN
	}

	return KindUnknown
}
