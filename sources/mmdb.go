package sources

import (
	"fmt"
	"net"
	"strconv"

	"github.com/juju/errors"
	"github.com/oschwald/maxminddb-golang"

	"github.com/takeshi-0987/ipatlas/atlaslib"
)

// mmdbRecord covers what GeoLite2/GeoIP2 City, ASN and Enterprise
// databases may carry. Absent sections simply stay zero.
type mmdbRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		IsoCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	Subdivisions []struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
		TimeZone  string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
	Traits struct {
		ISP                          string `maxminddb:"isp"`
		Organization                 string `maxminddb:"organization"`
		AutonomousSystemNumber       uint   `maxminddb:"autonomous_system_number"`
		AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
	} `maxminddb:"traits"`
}

type mmdbReader struct {
	db *maxminddb.Reader
}

func openMMDB(path string) (geoReader, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "cannot initialize a maxminddb reader")
	}

	return &mmdbReader{db: db}, nil
}

func (m *mmdbReader) Lookup(ip net.IP) (atlaslib.Record, error) {
	record := mmdbRecord{}

	network, ok, err := m.db.LookupNetwork(ip, &record)
	if err != nil {
		return atlaslib.Record{}, errors.Annotate(err, "cannot lookup this ip address")
	}

	if !ok {
		return atlaslib.Record{}, nil
	}

	rv := atlaslib.Record{
		Country:        localizedName(record.Country.Names),
		CountryCode:    record.Country.IsoCode,
		City:           localizedName(record.City.Names),
		ISP:            record.Traits.ISP,
		Organization:   record.Traits.Organization,
		ASOrganization: record.Traits.AutonomousSystemOrganization,
		Timezone:       record.Location.TimeZone,
	}

	if len(record.Subdivisions) > 0 {
		rv.Region = localizedName(record.Subdivisions[0].Names)
	}

	if record.Traits.AutonomousSystemNumber != 0 {
		rv.ASN = fmt.Sprintf("AS%d", record.Traits.AutonomousSystemNumber)
	}

	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		rv.Latitude = strconv.FormatFloat(record.Location.Latitude, 'f', -1, 64)
		rv.Longitude = strconv.FormatFloat(record.Location.Longitude, 'f', -1, 64)
	}

	if network != nil {
		rv.NetworkCIDR = network.String()
	}

	return rv, nil
}

func (m *mmdbReader) Close() error {
	return m.db.Close()
}

// localizedName prefers the zh-CN name, falls back to English.
func localizedName(names map[string]string) string {
	if name, ok := names["zh-CN"]; ok && name != "" {
		return name
	}

	return names["en"]
}
