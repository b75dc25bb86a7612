package atlaslib

import (
	"context"
	"net"
)

// Source is a single loaded geolocation database. Implementations must
// support concurrent Lookup calls: parallel strategy queries every source
// from worker pool goroutines simultaneously.
type Source interface {
	Name() string
	Path() string
	Kind() string
	Lookup(ctx context.Context, ip net.IP) (Record, error)
}

// Registry owns the loaded sources. Sources returns them ordered by
// ascending priority; Statuses additionally covers descriptors that failed
// to load. Close is idempotent.
type Registry interface {
	Sources() []Source
	Statuses() []SourceStatus
	Close() error
}

type Logger interface {
	LookupError(ip string, source string, err error)
}

// NopLogger discards everything.
type NopLogger struct{}

func (n NopLogger) LookupError(ip string, source string, err error) {}
