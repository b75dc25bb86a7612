package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/takeshi-0987/ipatlas/atlaslib"
	"github.com/takeshi-0987/ipatlas/sources"
)

type ParseConfigTestSuite struct {
	suite.Suite

	dir string
}

func (suite *ParseConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *ParseConfigTestSuite) write(content string) string {
	path := filepath.Join(suite.dir, "config.hjson")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *ParseConfigTestSuite) TestFull() {
	path := suite.write(`{
      // comments are allowed here
      listen: "127.0.0.1:8000"
      basic_auth_user: user
      basic_auth_password: password

      databases: [
        {
          name: city
          path: /geoip/GeoLite2-City.mmdb
          priority: 1
        }
        {
          name: ip2location
          path: /geoip/DB11.BIN
          kind: ip2location_bin
          enabled: false
          priority: 2
        }
      ]

      cache: {
        ttl: 10m
        max_size: 200
      }

      query: {
        strategy: parallel
        stop_on_first_success: false
        max_concurrency: 4
      }

      display: {
        format_string: "{country}/{city}"
        show_asn: true
      }

      search_urls: [
        {
          name: iplocation
          url: "https://www.iplocation.net/?q={ip}"
        }
      ]
    }`)

	conf, err := parseConfig(path)
	suite.Require().NoError(err)

	suite.Equal("127.0.0.1:8000", conf.Listen)
	suite.Equal("user", conf.BasicAuthUser)
	suite.Equal("password", conf.BasicAuthPassword)

	descriptors := conf.Descriptors()
	suite.Require().Len(descriptors, 2)
	suite.Equal(sources.Descriptor{
		Name:     "city",
		Path:     "/geoip/GeoLite2-City.mmdb",
		Kind:     sources.KindUnknown,
		Enabled:  true,
		Priority: 1,
	}, descriptors[0])
	suite.Equal(sources.KindIP2LocationBIN, descriptors[1].Kind)
	suite.False(descriptors[1].Enabled)

	opts := conf.EngineOptions()
	suite.Equal(atlaslib.StrategyParallel, opts.Strategy)
	suite.False(opts.StopOnFirstSuccess)
	suite.True(opts.SkipPrivateIPs)
	suite.True(opts.SkipSpecialIPs)
	suite.Equal(4, opts.MaxConcurrency)
	suite.True(opts.CacheEnabled)
	suite.Equal(10*time.Minute, opts.CacheTTL)
	suite.Equal(200, opts.CacheMaxSize)
	suite.Equal("{country}/{city}", opts.FormatString)
	suite.True(opts.ShowASN)
	suite.Require().Len(opts.SearchURLs, 1)
	suite.Equal("iplocation", opts.SearchURLs[0].Name)
}

func (suite *ParseConfigTestSuite) TestDefaults() {
	conf, err := parseConfig(suite.write(`{}`))
	suite.Require().NoError(err)

	opts := conf.EngineOptions()
	suite.Equal(atlaslib.StrategySequential, opts.Strategy)
	suite.True(opts.StopOnFirstSuccess)
	suite.True(opts.SkipPrivateIPs)
	suite.True(opts.SkipSpecialIPs)
	suite.True(opts.CacheEnabled)
	suite.True(opts.ShowNetwork)
	suite.Empty(conf.Descriptors())
}

func (suite *ParseConfigTestSuite) TestMissingFile() {
	_, err := parseConfig(filepath.Join(suite.dir, "nope.hjson"))
	suite.Error(err)
}

func (suite *ParseConfigTestSuite) TestMalformed() {
	_, err := parseConfig(suite.write(`{listen: [}`))
	suite.Error(err)
}

func (suite *ParseConfigTestSuite) TestBadListen() {
	_, err := parseConfig(suite.write(`{listen: "127.0.0.1"}`))
	suite.Error(err)
}

func (suite *ParseConfigTestSuite) TestBadStrategy() {
	_, err := parseConfig(suite.write(`{query: {strategy: fastest}}`))
	suite.Error(err)
}

func (suite *ParseConfigTestSuite) TestBadTTL() {
	_, err := parseConfig(suite.write(`{cache: {ttl: "ten minutes"}}`))
	suite.Error(err)
}

func (suite *ParseConfigTestSuite) TestUnnamedDatabase() {
	_, err := parseConfig(suite.write(
		`{databases: [{path: /geoip/city.mmdb}]}`))
	suite.Error(err)
}

func (suite *ParseConfigTestSuite) TestDuplicatedDatabase() {
	_, err := parseConfig(suite.write(`{
      databases: [
        {name: city, path: /geoip/a.mmdb}
        {name: city, path: /geoip/b.mmdb}
      ]
    }`))
	suite.Error(err)
}

func TestParseConfig(t *testing.T) {
	suite.Run(t, &ParseConfigTestSuite{})
}
