package sources

import (
	"context"
	"net"
	"sort"
	"sync"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/takeshi-0987/ipatlas/atlaslib"
)

// selfTestIP must resolve in any non-empty geolocation database. A source
// which cannot answer for it is discarded at load time.
const selfTestIP = "8.8.8.8"

// Descriptor is the configuration of a single database. Immutable once
// loaded.
type Descriptor struct {
	Name     string
	Path     string
	Kind     Kind
	Enabled  bool
	Priority int
	Extra    map[string]string
}

// geoReader is the contract the format-specific adapters fulfill. Lookup
// returns an empty record for addresses the database has no row for.
type geoReader interface {
	Lookup(ip net.IP) (atlaslib.Record, error)
	Close() error
}

type openFunc func(path string) (geoReader, error)

var openers = map[Kind]openFunc{
	KindMMDB:           openMMDB,
	KindIP2LocationBIN: openIP2Location,
}

// LoadedSource is an open database handle together with its descriptor.
// Safe for concurrent Lookup calls.
type LoadedSource struct {
	descriptor Descriptor
	reader     geoReader
}

func (s *LoadedSource) Name() string {
	return s.descriptor.Name
}

func (s *LoadedSource) Path() string {
	return s.descriptor.Path
}

func (s *LoadedSource) Kind() string {
	return string(s.descriptor.Kind)
}

func (s *LoadedSource) Priority() int {
	return s.descriptor.Priority
}

func (s *LoadedSource) Lookup(ctx context.Context, ip net.IP) (atlaslib.Record, error) {
	select {
	case <-ctx.Done():
		return atlaslib.Record{}, ctx.Err()
	default:
	}

	return s.reader.Lookup(ip)
}

func (s *LoadedSource) Close() error {
	return s.reader.Close()
}

// Registry holds every successfully loaded source in ascending priority
// order, plus load statuses for all enabled descriptors including the
// dropped ones.
type Registry struct {
	sources   []*LoadedSource
	statuses  []atlaslib.SourceStatus
	closeOnce sync.Once
}

func (r *Registry) Sources() []atlaslib.Source {
	rv := make([]atlaslib.Source, len(r.sources))

	for i, v := range r.sources {
		rv[i] = v
	}

	return rv
}

func (r *Registry) Statuses() []atlaslib.SourceStatus {
	rv := make([]atlaslib.SourceStatus, len(r.statuses))
	copy(rv, r.statuses)

	return rv
}

// Close releases every open reader. Idempotent.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		for _, v := range r.sources {
			if err := v.Close(); err != nil {
				log.WithFields(log.Fields{
					"source": v.Name(),
					"error":  err.Error(),
				}).Warn("Cannot close database reader.")
			}
		}
	})

	return nil
}

// Load opens every enabled descriptor in priority order. A descriptor
// whose file is missing, whose reader cannot open it or which fails the
// self-test lookup is dropped with a warning; a failed database is never
// fatal.
func Load(fs afero.Fs, descriptors []Descriptor) *Registry {
	return load(fs, descriptors, openers)
}

func load(fs afero.Fs, descriptors []Descriptor, openers map[Kind]openFunc) *Registry {
	enabled := make([]Descriptor, 0, len(descriptors))

	for _, v := range descriptors {
		if v.Enabled {
			enabled = append(enabled, v)
		}
	}

	// Stable: descriptor input order breaks priority ties.
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	registry := &Registry{}

	for _, desc := range enabled {
		status := atlaslib.SourceStatus{
			Name:     desc.Name,
			Path:     desc.Path,
			Kind:     string(desc.Kind),
			Enabled:  true,
			Priority: desc.Priority,
		}

		source, err := loadOne(fs, desc, openers)
		if err != nil {
			status.Error = err.Error()
			registry.statuses = append(registry.statuses, status)

			log.WithFields(log.Fields{
				"database": desc.Name,
				"path":     desc.Path,
				"error":    err.Error(),
			}).Warn("Cannot load database.")

			continue
		}

		status.Kind = source.Kind()
		status.Loaded = true
		registry.statuses = append(registry.statuses, status)
		registry.sources = append(registry.sources, source)

		log.WithFields(log.Fields{
			"database": desc.Name,
			"kind":     source.Kind(),
			"priority": desc.Priority,
		}).Info("Database was loaded.")
	}

	log.WithFields(log.Fields{
		"loaded":  len(registry.sources),
		"enabled": len(enabled),
	}).Info("Database registry is ready.")

	return registry
}

func loadOne(fs afero.Fs, desc Descriptor, openers map[Kind]openFunc) (*LoadedSource, error) {
	info, err := fs.Stat(desc.Path)
	if err != nil {
		return nil, errors.Annotate(err, "database file does not exist")
	}

	if !info.Mode().IsRegular() {
		return nil, errors.Errorf("database path %s is not a regular file", desc.Path)
	}

	kind := desc.Kind
	if kind == "" || kind == KindUnknown {
		kind = GuessKind(desc.Path)
	}

	opener, ok := openers[kind]
	if !ok {
		return nil, errors.Errorf("unsupported database format %s", kind)
	}

	reader, err := opener(desc.Path)
	if err != nil {
		return nil, errors.Annotate(err, "cannot open database")
	}

	if err := selfTest(reader); err != nil {
		reader.Close() // nolint: errcheck

		return nil, errors.Annotate(err, "database failed the self-test")
	}

	desc.Kind = kind

	return &LoadedSource{
		descriptor: desc,
		reader:     reader,
	}, nil
}

func selfTest(reader geoReader) error {
	record, err := reader.Lookup(net.ParseIP(selfTestIP))
	if err != nil {
		return errors.Annotatef(err, "lookup of %s failed", selfTestIP)
	}

	if record.Empty() {
		return errors.Errorf("lookup of %s returned an empty record", selfTestIP)
	}

	return nil
}
