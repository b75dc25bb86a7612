package atlaslib

// Record is a normalized geolocation record. Source adapters map whatever
// their reader library returns into this shape before it reaches the
// engine, so the core never inspects reader-native types.
type Record struct {
	Country        string `json:"country"`
	Region         string `json:"region"`
	City           string `json:"city"`
	ISP            string `json:"isp"`
	Organization   string `json:"organization"`
	ASN            string `json:"asn"`
	ASOrganization string `json:"as_organization"`
	CountryCode    string `json:"country_code"`
	Latitude       string `json:"latitude"`
	Longitude      string `json:"longitude"`
	Timezone       string `json:"timezone"`
	NetworkCIDR    string `json:"network_cidr"`
}

// Empty tells if a record carries no data at all. Sources return empty
// records for addresses they have no row for.
func (r Record) Empty() bool {
	return r == Record{}
}

// QueryResult is a result of querying a single source for a single IP
// address. Immutable once constructed; it contains only value fields, so
// copying a QueryResult is a deep copy.
type QueryResult struct {
	SourceName   string `json:"source_name"`
	SourcePath   string `json:"source_path"`
	SourceKind   string `json:"source_kind"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	ResponseTime int64  `json:"response_time"`
	IsSpecial    bool   `json:"is_special"`

	Record
}

// SourceStatus describes the runtime load state of a configured database.
type SourceStatus struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Enabled  bool   `json:"enabled"`
	Priority int    `json:"priority"`
	Loaded   bool   `json:"loaded"`
	Error    string `json:"error,omitempty"`
}

// SearchURL is a named URL template with an {ip} placeholder.
type SearchURL struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SourceDetail is a per-source entry of an IPDetails breakdown.
type SourceDetail struct {
	Source       string   `json:"source"`
	Kind         string   `json:"kind"`
	Success      bool     `json:"success"`
	ResponseTime int64    `json:"response_time"`
	Error        string   `json:"error,omitempty"`
	Data         *GeoData `json:"data,omitempty"`
}

// GeoData is the displayable subset of a result, filtered by display
// options.
type GeoData struct {
	Country      string `json:"country"`
	Region       string `json:"region"`
	City         string `json:"city"`
	ISP          string `json:"isp"`
	IsSpecial    bool   `json:"is_special"`
	ASN          string `json:"asn,omitempty"`
	NetworkCIDR  string `json:"network_cidr,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// IPDetails is an aggregated, display-oriented view of a resolution.
type IPDetails struct {
	IP        string         `json:"ip"`
	Location  string         `json:"location"`
	Success   bool           `json:"success"`
	IsSpecial bool           `json:"is_special"`
	Sources   []SourceDetail `json:"sources"`
}
