package app

import "time"

// Config contains the runtime configuration shared across internal
// modules. Kept flat so the server and CLI can populate it without
// knowing about each other.
type Config struct {
	// ListenAddr is the HTTP listen address for the review server.
	ListenAddr string

	// APIBaseURL is the reviewers API origin fetched from.
	APIBaseURL string

	// StoragePath is the SQLite payload cache location. Empty disables
	// persistent caching.
	StoragePath string

	// StaticDir is the directory holding the review UI assets; the index
	// page is served from here with the reviewers token injected.
	StaticDir string

	// AuthToken is the reviewers token injected into the served index
	// page. Typically sourced from the environment.
	AuthToken string

	// FetchTimeout bounds a single API request.
	FetchTimeout time.Duration
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:   ":8080",
		APIBaseURL:   "http://localhost:9999",
		StoragePath:  "",
		StaticDir:    "",
		FetchTimeout: 30 * time.Second,
	}
}
