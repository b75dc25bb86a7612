package atlaslib

import "sync"

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	TotalQueries      uint64            `json:"total_queries"`
	SpecialIPQueries  uint64            `json:"special_ip_queries"`
	DatabaseQueries   uint64            `json:"database_queries"`
	SuccessfulQueries uint64            `json:"successful_queries"`
	FailedQueries     uint64            `json:"failed_queries"`
	PerSourceQueries  map[string]uint64 `json:"per_source_queries"`

	CacheEnabled    bool    `json:"cache_enabled"`
	CacheHits       uint64  `json:"cache_hits"`
	CacheMisses     uint64  `json:"cache_misses"`
	CacheSize       int     `json:"cache_size"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	CacheTTLSeconds int     `json:"cache_ttl_seconds"`
	CacheMaxSize    int     `json:"cache_max_size"`
}

type engineStats struct {
	mutex             sync.Mutex
	totalQueries      uint64
	specialIPQueries  uint64
	databaseQueries   uint64
	successfulQueries uint64
	failedQueries     uint64
	perSource         map[string]uint64
}

func newEngineStats() *engineStats {
	return &engineStats{
		perSource: map[string]uint64{},
	}
}

func (s *engineStats) query() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.totalQueries++
}

func (s *engineStats) specialQuery() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.specialIPQueries++
}

func (s *engineStats) sourceQuery(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.perSource[name]++
}

func (s *engineStats) databasesQueried(count int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.databaseQueries += uint64(count)
}

func (s *engineStats) outcome(success bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if success {
		s.successfulQueries++
	} else {
		s.failedQueries++
	}
}

func (s *engineStats) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.totalQueries = 0
	s.specialIPQueries = 0
	s.databaseQueries = 0
	s.successfulQueries = 0
	s.failedQueries = 0
	s.perSource = map[string]uint64{}
}

func (s *engineStats) snapshot() Stats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	perSource := make(map[string]uint64, len(s.perSource))

	for k, v := range s.perSource {
		perSource[k] = v
	}

	return Stats{
		TotalQueries:      s.totalQueries,
		SpecialIPQueries:  s.specialIPQueries,
		DatabaseQueries:   s.databaseQueries,
		SuccessfulQueries: s.successfulQueries,
		FailedQueries:     s.failedQueries,
		PerSourceQueries:  perSource,
	}
}
