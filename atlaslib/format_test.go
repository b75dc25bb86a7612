package atlaslib_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/takeshi-0987/ipatlas/atlaslib"
)

type FormatResultsTestSuite struct {
	suite.Suite
}

func (suite *FormatResultsTestSuite) TestEmptySubstitutionsCollapse() {
	results := []atlaslib.QueryResult{
		{
			Success: true,
			Record:  atlaslib.Record{Country: "US", City: "NYC"},
		},
	}

	suite.Equal("US-NYC", atlaslib.FormatResults(results, "{country}-{region}-{city}"))
}

func (suite *FormatResultsTestSuite) TestAllFields() {
	results := []atlaslib.QueryResult{
		{
			Success: true,
			Record: atlaslib.Record{
				Country: "Testland",
				Region:  "North",
				City:    "Springfield",
				ISP:     "TestNet",
				ASN:     "AS64496",
			},
		},
	}

	suite.Equal("Testland-North-Springfield",
		atlaslib.FormatResults(results, "{country}-{region}-{city}"))
	suite.Equal("Testland TestNet AS64496",
		atlaslib.FormatResults(results, "{country} {isp} {asn}"))
}

func (suite *FormatResultsTestSuite) TestUnknownMarkersAreEmpty() {
	results := []atlaslib.QueryResult{
		{
			Success: true,
			Record:  atlaslib.Record{Country: "US", Region: "-", City: "unknown"},
		},
	}

	suite.Equal("US", atlaslib.FormatResults(results, "{country}-{region}-{city}"))
}

func (suite *FormatResultsTestSuite) TestSpecialWinsOverDatabase() {
	results := []atlaslib.QueryResult{
		{
			Success: true,
			Record:  atlaslib.Record{Country: "US", City: "NYC"},
		},
		{
			Success:   true,
			IsSpecial: true,
			Record: atlaslib.Record{
				Country: "private network",
				Region:  "class C private network (192.168.0.0/16)",
			},
		},
	}

	location := atlaslib.FormatResults(results, "{country}-{region}-{city}")

	suite.Contains(location, "private network")
	suite.NotContains(location, "NYC")
}

func (suite *FormatResultsTestSuite) TestSkipsUselessSuccess() {
	results := []atlaslib.QueryResult{
		{
			Success: true,
			Record:  atlaslib.Record{ISP: "OnlyISP"},
		},
		{
			Success: true,
			Record:  atlaslib.Record{Country: "Testland"},
		},
	}

	suite.Equal("Testland", atlaslib.FormatResults(results, "{country}-{region}-{city}"))
}

func (suite *FormatResultsTestSuite) TestNoResults() {
	suite.Equal(atlaslib.FormatLocationUnknown,
		atlaslib.FormatResults(nil, "{country}-{region}-{city}"))
}

func (suite *FormatResultsTestSuite) TestAllFailed() {
	results := []atlaslib.QueryResult{
		{Error: "IP not found in database"},
		{Error: "cannot read database"},
	}

	suite.Equal(atlaslib.FormatLocationFailed,
		atlaslib.FormatResults(results, "{country}-{region}-{city}"))
}

func (suite *FormatResultsTestSuite) TestMixedFailureAndEmptySuccess() {
	results := []atlaslib.QueryResult{
		{Error: "IP not found in database"},
		{Success: true, Record: atlaslib.Record{}},
	}

	suite.Equal(atlaslib.FormatLocationUnknown,
		atlaslib.FormatResults(results, "{country}-{region}-{city}"))
}

func (suite *FormatResultsTestSuite) TestDefaultFormat() {
	results := []atlaslib.QueryResult{
		{Success: true, Record: atlaslib.Record{Country: "US", City: "NYC"}},
	}

	suite.Equal("US-NYC", atlaslib.FormatResults(results, ""))
}

func TestFormatResults(t *testing.T) {
	suite.Run(t, &FormatResultsTestSuite{})
}
