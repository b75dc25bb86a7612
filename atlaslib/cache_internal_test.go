package atlaslib

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ResultCacheTestSuite struct {
	suite.Suite

	cache *resultCache
	now   time.Time
}

func (suite *ResultCacheTestSuite) SetupTest() {
	suite.cache = newResultCache(time.Minute, 10)
	suite.now = time.Date(2021, 3, 14, 12, 0, 0, 0, time.UTC)
}

func (suite *ResultCacheTestSuite) TestRoundTrip() {
	stored := []QueryResult{
		{SourceName: "a", Success: true, Record: Record{Country: "Testland"}},
		{SourceName: "b", Error: "IP not found in database"},
	}

	suite.cache.put("203.0.113.5", stored, suite.now)

	got, ok := suite.cache.get("203.0.113.5", suite.now.Add(time.Second))

	suite.Require().True(ok)
	suite.Equal(stored, got)
}

func (suite *ResultCacheTestSuite) TestDeepCopy() {
	stored := []QueryResult{{SourceName: "a", Record: Record{Country: "Testland"}}}

	suite.cache.put("203.0.113.5", stored, suite.now)

	got, ok := suite.cache.get("203.0.113.5", suite.now)

	suite.Require().True(ok)

	got[0].Country = "mutated"

	again, ok := suite.cache.get("203.0.113.5", suite.now)

	suite.Require().True(ok)
	suite.Equal("Testland", again[0].Country)
}

func (suite *ResultCacheTestSuite) TestLiteralKey() {
	suite.cache.put("10.0.0.1/24", []QueryResult{{SourceName: "a"}}, suite.now)

	_, ok := suite.cache.get("10.0.0.1", suite.now)
	suite.False(ok)

	_, ok = suite.cache.get("10.0.0.1/24", suite.now)
	suite.True(ok)
}

func (suite *ResultCacheTestSuite) TestTTLExpiry() {
	suite.cache.put("203.0.113.5", []QueryResult{{SourceName: "a"}}, suite.now)

	_, ok := suite.cache.get("203.0.113.5", suite.now.Add(time.Minute))

	suite.False(ok)

	_, _, size := suite.cache.counters()
	suite.Equal(0, size)
}

func (suite *ResultCacheTestSuite) TestEvictionBound() {
	for i := 0; i < 50; i++ {
		ip := fmt.Sprintf("203.0.113.%d", i)
		suite.cache.put(ip, []QueryResult{{SourceName: "a"}}, suite.now.Add(time.Duration(i)*time.Millisecond))

		_, _, size := suite.cache.counters()
		suite.LessOrEqual(size, 10)
	}
}

func (suite *ResultCacheTestSuite) TestEvictsOldestFirst() {
	for i := 0; i < 11; i++ {
		ip := fmt.Sprintf("203.0.113.%d", i)
		suite.cache.put(ip, []QueryResult{{SourceName: "a"}}, suite.now.Add(time.Duration(i)*time.Millisecond))
	}

	// 11 entries, 20% of 11 is 2.
	_, _, size := suite.cache.counters()
	suite.Equal(9, size)

	_, ok := suite.cache.get("203.0.113.0", suite.now.Add(time.Second))
	suite.False(ok)

	_, ok = suite.cache.get("203.0.113.10", suite.now.Add(time.Second))
	suite.True(ok)
}

func (suite *ResultCacheTestSuite) TestCounters() {
	suite.cache.put("203.0.113.5", []QueryResult{{SourceName: "a"}}, suite.now)

	suite.cache.get("203.0.113.5", suite.now) // nolint: errcheck
	suite.cache.get("203.0.113.6", suite.now) // nolint: errcheck

	hits, misses, size := suite.cache.counters()

	suite.EqualValues(1, hits)
	suite.EqualValues(1, misses)
	suite.Equal(1, size)
}

func (suite *ResultCacheTestSuite) TestClearKeepsCounters() {
	suite.cache.put("203.0.113.5", []QueryResult{{SourceName: "a"}}, suite.now)
	suite.cache.get("203.0.113.5", suite.now) // nolint: errcheck

	suite.cache.clear()

	hits, _, size := suite.cache.counters()

	suite.EqualValues(1, hits)
	suite.Equal(0, size)

	_, ok := suite.cache.get("203.0.113.5", suite.now)
	suite.False(ok)
}

func (suite *ResultCacheTestSuite) TestNilCacheIsNoop() {
	var cache *resultCache

	cache.put("203.0.113.5", []QueryResult{{SourceName: "a"}}, suite.now)
	cache.clear()

	_, ok := cache.get("203.0.113.5", suite.now)
	suite.False(ok)

	hits, misses, size := cache.counters()
	suite.EqualValues(0, hits)
	suite.EqualValues(0, misses)
	suite.Equal(0, size)
}

func TestResultCache(t *testing.T) {
	suite.Run(t, &ResultCacheTestSuite{})
}
