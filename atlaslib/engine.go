package atlaslib

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Strategy selects how sources are consulted during one resolution.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
)

const (
	DefaultMaxConcurrency = 2
	DefaultCacheTTL       = 10 * time.Minute
	DefaultCacheMaxSize   = 100

	workerPoolExpireTime = time.Minute
)

// Options configure an Engine. Zero values fall back to defaults where a
// default exists.
type Options struct {
	Strategy           Strategy
	StopOnFirstSuccess bool
	SkipPrivateIPs     bool
	SkipSpecialIPs     bool
	MaxConcurrency     int

	CacheEnabled bool
	CacheTTL     time.Duration
	CacheMaxSize int

	FormatString string
	ShowASN      bool
	ShowNetwork  bool

	SearchURLs []SearchURL
}

// Engine resolves IP addresses against an ordered registry of geolocation
// databases. Construct one per process and pass it around explicitly;
// Shutdown releases the worker pool and the registry deterministically.
type Engine struct {
	registry  Registry
	logger    Logger
	opts      Options
	cache     *resultCache
	stats     *engineStats
	pool      *ants.Pool
	rwmutex   sync.RWMutex
	closeOnce sync.Once
	closed    bool
}

func NewEngine(registry Registry, logger Logger, opts Options) (*Engine, error) {
	if logger == nil {
		logger = NopLogger{}
	}

	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}

	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	if opts.CacheMaxSize <= 0 {
		opts.CacheMaxSize = DefaultCacheMaxSize
	}

	if opts.FormatString == "" {
		opts.FormatString = DefaultFormatString
	}

	if opts.Strategy == "" {
		opts.Strategy = StrategySequential
	}

	rv := &Engine{
		registry: registry,
		logger:   logger,
		opts:     opts,
		stats:    newEngineStats(),
	}

	if opts.CacheEnabled {
		rv.cache = newResultCache(opts.CacheTTL, opts.CacheMaxSize)
	}

	pool, err := ants.NewPool(opts.MaxConcurrency,
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	rv.pool = pool

	return rv, nil
}

// Resolve consults the cache, the classifier and then every loaded source
// under the configured strategy. It never fails because of a source: a
// broken source contributes a QueryResult with Error set. The only error
// condition is a shutdown engine.
func (e *Engine) Resolve(ctx context.Context, ip string) ([]QueryResult, error) {
	e.rwmutex.RLock()
	defer e.rwmutex.RUnlock()

	if e.closed {
		return nil, ErrEngineShutdown
	}

	e.stats.query()

	if cached, ok := e.cache.get(ip, time.Now()); ok {
		return cached, nil
	}

	results := make([]QueryResult, 0, 4)

	special := Classify(ip)
	if special != nil {
		results = append(results, *special)
		e.stats.specialQuery()

		if e.opts.SkipSpecialIPs && usable(special.Country) {
			e.cache.put(ip, results, time.Now())

			return results, nil
		}
	}

	if e.opts.SkipPrivateIPs && isPrivateAddr(ip) {
		if special == nil {
			results = append(results, internalNetworkResult())
			e.stats.specialQuery()
		}

		e.cache.put(ip, results, time.Now())

		return results, nil
	}

	sources := e.registry.Sources()

	var dbResults []QueryResult

	if e.opts.Strategy == StrategyParallel && e.opts.MaxConcurrency > 1 {
		dbResults = e.queryParallel(ctx, sources, ip)
	} else {
		dbResults = e.querySequential(ctx, sources, ip)
	}

	results = append(results, dbResults...)
	e.stats.databasesQueried(len(dbResults))
	e.stats.outcome(anySuccessful(dbResults))

	if e.opts.StopOnFirstSuccess && len(dbResults) > 1 {
		if first := firstSuccessful(dbResults); first != nil {
			filtered := make([]QueryResult, 0, 2)

			if special != nil {
				filtered = append(filtered, *special)
			}

			filtered = append(filtered, *first)
			e.cache.put(ip, filtered, time.Now())

			return filtered, nil
		}
	}

	e.cache.put(ip, results, time.Now())

	return results, nil
}

// FormatLocation resolves an address and renders it into a single line
// using the configured format string.
func (e *Engine) FormatLocation(ctx context.Context, ip string) (string, error) {
	results, err := e.Resolve(ctx, ip)
	if err != nil {
		return "", err
	}

	return FormatResults(results, e.opts.FormatString), nil
}

// Details resolves an address and builds a per-source breakdown respecting
// the display options.
func (e *Engine) Details(ctx context.Context, ip string) (IPDetails, error) {
	details := IPDetails{
		IP:      ip,
		Sources: []SourceDetail{},
	}

	results, err := e.Resolve(ctx, ip)
	if err != nil {
		return details, err
	}

	for _, r := range results {
		entry := SourceDetail{
			Source:       r.SourceName,
			Kind:         r.SourceKind,
			Success:      r.Success,
			ResponseTime: r.ResponseTime,
		}

		if r.Success || r.IsSpecial {
			data := &GeoData{
				Country:      r.Country,
				Region:       r.Region,
				City:         r.City,
				ISP:          r.ISP,
				IsSpecial:    r.IsSpecial,
				Organization: r.Organization,
			}

			if e.opts.ShowASN {
				data.ASN = r.ASN
			}

			if e.opts.ShowNetwork {
				data.NetworkCIDR = r.NetworkCIDR
			}

			entry.Data = data

			if !details.Success {
				details.Location = formatLocationParts(r)
				details.Success = true
				details.IsSpecial = r.IsSpecial
			}
		} else {
			entry.Error = r.Error
		}

		details.Sources = append(details.Sources, entry)
	}

	return details, nil
}

// SearchURL renders the named URL template for an address. An empty name
// picks the first configured template.
func (e *Engine) SearchURL(name, ip string) (string, error) {
	if len(e.opts.SearchURLs) == 0 {
		return "", ErrNoSearchURLs
	}

	if name == "" {
		return strings.ReplaceAll(e.opts.SearchURLs[0].URL, "{ip}", ip), nil
	}

	for _, v := range e.opts.SearchURLs {
		if v.Name == name {
			return strings.ReplaceAll(v.URL, "{ip}", ip), nil
		}
	}

	return "", ErrUnknownSearchURL
}

// ListSources reports the load state of every enabled descriptor, in
// priority order.
func (e *Engine) ListSources() ([]SourceStatus, error) {
	e.rwmutex.RLock()
	defer e.rwmutex.RUnlock()

	if e.closed {
		return nil, ErrEngineShutdown
	}

	return e.registry.Statuses(), nil
}

// ClearCache drops every cached entry. Hit/miss counters survive.
func (e *Engine) ClearCache() error {
	e.rwmutex.RLock()
	defer e.rwmutex.RUnlock()

	if e.closed {
		return ErrEngineShutdown
	}

	e.cache.clear()

	return nil
}

// ResetStats zeroes the query counters.
func (e *Engine) ResetStats() error {
	e.rwmutex.RLock()
	defer e.rwmutex.RUnlock()

	if e.closed {
		return ErrEngineShutdown
	}

	e.stats.reset()

	return nil
}

// Stats returns a snapshot of query and cache counters.
func (e *Engine) Stats() (Stats, error) {
	e.rwmutex.RLock()
	defer e.rwmutex.RUnlock()

	if e.closed {
		return Stats{}, ErrEngineShutdown
	}

	rv := e.stats.snapshot()

	rv.CacheEnabled = e.cache != nil
	rv.CacheHits, rv.CacheMisses, rv.CacheSize = e.cache.counters()
	rv.CacheTTLSeconds = int(e.opts.CacheTTL / time.Second)
	rv.CacheMaxSize = e.opts.CacheMaxSize

	if total := rv.CacheHits + rv.CacheMisses; total > 0 {
		rv.CacheHitRate = float64(rv.CacheHits) / float64(total)
	}

	return rv, nil
}

// Shutdown releases the worker pool and closes the registry. Idempotent;
// every subsequent engine call returns ErrEngineShutdown.
func (e *Engine) Shutdown() {
	e.rwmutex.Lock()
	defer e.rwmutex.Unlock()

	e.closed = true

	e.closeOnce.Do(func() {
		e.pool.Release()
		e.registry.Close() // nolint: errcheck
	})
}

func (e *Engine) querySequential(ctx context.Context, sources []Source, ip string) []QueryResult {
	results := make([]QueryResult, 0, len(sources))

	for _, src := range sources {
		result := e.querySource(ctx, src, ip)
		results = append(results, result)

		// The early break belongs to the sequential strategy only: a
		// parallel strategy degraded to one worker still consults every
		// source and narrows afterwards.
		if result.Success && e.opts.StopOnFirstSuccess &&
			e.opts.Strategy == StrategySequential {
			break
		}
	}

	return results
}

type indexedResult struct {
	index  int
	result QueryResult
}

func (e *Engine) queryParallel(ctx context.Context, sources []Source, ip string) []QueryResult {
	resultChannel := make(chan indexedResult, len(sources))
	wg := &sync.WaitGroup{}

	for i, src := range sources {
		wg.Add(1)

		index, source := i, src
		task := func() {
			defer wg.Done()

			resultChannel <- indexedResult{
				index:  index,
				result: e.querySource(ctx, source, ip),
			}
		}

		if err := e.pool.Submit(task); err != nil {
			wg.Done()

			resultChannel <- indexedResult{
				index:  index,
				result: failedResult(source, err),
			}
		}
	}

	wg.Wait()
	close(resultChannel)

	// Completion order is not deterministic; indexing by submission slot
	// restores priority order.
	results := make([]QueryResult, len(sources))

	for v := range resultChannel {
		results[v.index] = v.result
	}

	return results
}

func (e *Engine) querySource(ctx context.Context, src Source, ip string) QueryResult {
	rv := QueryResult{
		SourceName: src.Name(),
		SourcePath: src.Path(),
		SourceKind: src.Kind(),
	}

	e.stats.sourceQuery(src.Name())

	parsed := net.ParseIP(strings.TrimSpace(stripCIDR(ip)))
	if parsed == nil {
		rv.Error = errTextMalformedIP

		return rv
	}

	start := time.Now()
	record, err := src.Lookup(ctx, parsed)
	rv.ResponseTime = time.Since(start).Milliseconds()

	switch {
	case err != nil:
		rv.Error = err.Error()
		e.logger.LookupError(ip, src.Name(), err)
	case record.Empty():
		rv.Error = errTextNotFound
	default:
		rv.Success = true
		rv.Record = record
	}

	return rv
}

func internalNetworkResult() QueryResult {
	return QueryResult{
		SourceName: SystemSourceName,
		SourceKind: SpecialSourceKind,
		Success:    true,
		IsSpecial:  true,
		Record: Record{
			Country: "internal network",
			Region:  "private network",
		},
	}
}

func failedResult(src Source, err error) QueryResult {
	return QueryResult{
		SourceName: src.Name(),
		SourcePath: src.Path(),
		SourceKind: src.Kind(),
		Error:      err.Error(),
	}
}

func anySuccessful(results []QueryResult) bool {
	return firstSuccessful(results) != nil
}

func firstSuccessful(results []QueryResult) *QueryResult {
	for i := range results {
		if results[i].Success {
			return &results[i]
		}
	}

	return nil
}
