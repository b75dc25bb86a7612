// Package atlaslib contains the multi-source IP geolocation resolution
// engine.
//
// An Engine owns a Registry of loaded database sources ordered by
// priority. Resolution short-circuits well-known special addresses
// (private, loopback, multicast, link-local, reserved), then queries the
// sources either sequentially or in parallel through a bounded worker
// pool, optionally stopping at the first success. Results are cached per
// IP with TTL expiry and bulk size-bounded eviction.
//
// The engine degrades instead of failing: a missing database, a broken
// reader or an address no source knows all end up as per-source error
// entries in the result list, never as an engine error.
package atlaslib
