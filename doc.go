// ipatlas resolves IP addresses into geolocation data using locally
// stored databases.
//
// Idea is simple: you have an IP address like 1.2.3.4 and a couple of
// database files on disk — a GeoLite2 mmdb, an IP2Location BIN — and you
// want to know where this address comes from without asking anyone over
// the network.
//
// Tool itself is organized into 3 logical parts:
//
// Atlaslib
//
// atlaslib is the main package of the application which contains the
// Engine struct and the resolution logic: special-address
// classification, sequential or parallel querying of prioritized
// sources, TTL result caching and location formatting.
//
// Sources
//
// This package loads and self-tests the configured database files and
// adapts the MMDB and IP2Location reader libraries to the engine's
// source contract.
//
// Main package
//
// The main package is an example of how to wire both together. The
// resulting binary resolves addresses from the command line or serves
// an HTTP API.
package main
