package atlaslib

import "strings"

const (
	// DefaultFormatString is used when the display configuration does not
	// set one.
	DefaultFormatString = "{country}-{region}-{city}"

	// FormatLocationUnknown is returned when no result carries usable
	// location data.
	FormatLocationUnknown = "unknown location"

	// FormatLocationFailed is returned when results exist but every one of
	// them is a failure.
	FormatLocationFailed = "query failed"
)

// usable filters out the empty-ish markers different readers use.
func usable(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "-", "unknown":
		return false
	}

	return true
}

func orEmpty(value string) string {
	if !usable(value) {
		return ""
	}

	return value
}

// FormatResults renders a single-line location out of a result sequence.
// Special results win over database ones; within each group the first
// usable entry is taken. Placeholders {country}, {region}, {city}, {isp}
// and {asn} are substituted, empty substitutions are collapsed.
func FormatResults(results []QueryResult, format string) string {
	if format == "" {
		format = DefaultFormatString
	}

	for _, r := range results {
		if r.IsSpecial && usable(r.Country) {
			if location := renderTemplate(format, r); location != "" {
				return location
			}
		}
	}

	for _, r := range results {
		if !r.Success || r.IsSpecial {
			continue
		}

		if !usable(r.Country) && !usable(r.Region) && !usable(r.City) {
			continue
		}

		if location := renderTemplate(format, r); location != "" {
			return location
		}
	}

	if len(results) > 0 && allFailed(results) {
		return FormatLocationFailed
	}

	return FormatLocationUnknown
}

func allFailed(results []QueryResult) bool {
	for _, r := range results {
		if r.Success || r.Error == "" {
			return false
		}
	}

	return true
}

func renderTemplate(format string, r QueryResult) string {
	location := strings.NewReplacer(
		"{country}", orEmpty(r.Country),
		"{region}", orEmpty(r.Region),
		"{city}", orEmpty(r.City),
		"{isp}", orEmpty(r.ISP),
		"{asn}", orEmpty(r.ASN),
	).Replace(format)

	for strings.Contains(location, "--") {
		location = strings.ReplaceAll(location, "--", "-")
	}

	return strings.Trim(location, "-")
}

// formatLocationParts is the fallback rendition used by Details: dash-join
// whatever of country/region/city is usable.
func formatLocationParts(r QueryResult) string {
	parts := make([]string, 0, 3)

	for _, v := range []string{r.Country, r.Region, r.City} {
		if usable(v) {
			parts = append(parts, v)
		}
	}

	if len(parts) == 0 {
		return FormatLocationUnknown
	}

	return strings.Join(parts, "-")
}
