// Package sources implements the database registry: it turns descriptor
// lists from configuration into loaded, self-tested geolocation database
// handles for atlaslib, and normalizes every reader's native record into
// the engine's fixed shape at this boundary.
//
// Supported formats are MaxMind MMDB (via oschwald/maxminddb-golang) and
// IP2Location BIN (via ip2location/ip2location-go).
package sources
