package sources

import (
	"net"
	"strconv"
	"strings"
	"sync"

	ip2location "github.com/ip2location/ip2location-go/v9"
	"github.com/juju/errors"

	"github.com/takeshi-0987/ipatlas/atlaslib"
)

type ip2locationReader struct {
	// Get_all seeks inside the BIN file; one lookup at a time.
	dbLock sync.Mutex
	db     *ip2location.DB
}

func openIP2Location(path string) (geoReader, error) {
	db, err := ip2location.OpenDB(path)
	if err != nil {
		return nil, errors.Annotate(err, "cannot initialize an ip2location reader")
	}

	return &ip2locationReader{db: db}, nil
}

func (r *ip2locationReader) Lookup(ip net.IP) (atlaslib.Record, error) {
	r.dbLock.Lock()
	record, err := r.db.Get_all(ip.String())
	r.dbLock.Unlock()

	if err != nil {
		return atlaslib.Record{}, errors.Annotate(err, "cannot lookup this ip address")
	}

	if cleanBINField(record.Country_short) == "" {
		return atlaslib.Record{}, nil
	}

	rv := atlaslib.Record{
		Country:     cleanBINField(record.Country_long),
		CountryCode: cleanBINField(record.Country_short),
		Region:      cleanBINField(record.Region),
		City:        cleanBINField(record.City),
		ISP:         cleanBINField(record.Isp),
		Timezone:    cleanBINField(record.Timezone),
	}

	if asn := cleanBINField(record.Asn); asn != "" && asn != "0" {
		rv.ASN = "AS" + asn
	}

	if as := cleanBINField(record.As); as != "" {
		rv.ASOrganization = as
	}

	if record.Latitude != 0 {
		rv.Latitude = strconv.FormatFloat(float64(record.Latitude), 'f', -1, 32)
	}

	if record.Longitude != 0 {
		rv.Longitude = strconv.FormatFloat(float64(record.Longitude), 'f', -1, 32)
	}

	return rv, nil
}

func (r *ip2locationReader) Close() error {
	r.dbLock.Lock()
	defer r.dbLock.Unlock()

	r.db.Close()

	return nil
}

// cleanBINField strips the markers ip2location databases use for missing
// or unlicensed fields.
func cleanBINField(value string) string {
	value = strings.TrimSpace(value)
	lowered := strings.ToLower(value)

	if value == "-" ||
		strings.Contains(lowered, "unavailable") ||
		strings.Contains(lowered, "invalid") {
		return ""
	}

	return value
}
