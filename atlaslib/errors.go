package atlaslib

import "errors"

var (
	// ErrEngineShutdown is returned by every engine method called after
	// Shutdown.
	ErrEngineShutdown = errors.New("engine instance was shutdown")

	// ErrNoSearchURLs is returned by SearchURL when no URL templates are
	// configured.
	ErrNoSearchURLs = errors.New("no search urls are configured")

	// ErrUnknownSearchURL is returned by SearchURL for a name that is not
	// configured.
	ErrUnknownSearchURL = errors.New("search url is unknown")
)

const (
	errTextNotFound    = "IP not found in database"
	errTextMalformedIP = "cannot parse ip address"
)
