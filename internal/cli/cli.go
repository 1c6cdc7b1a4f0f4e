package cli

import (
	"flag"
	"strings"
	"time"
)

// CLIArgs are the command-line arguments for the review server.
type CLIArgs struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// APIBaseURL is the reviewers API origin to fetch from.
	APIBaseURL string

	// StoragePath is the SQLite payload cache file; empty disables the
	// persistent cache.
	StoragePath string

	// StaticDir holds the review UI assets; empty disables index serving.
	StaticDir string

	// FetchTimeout bounds a single API request; 0 means the default.
	FetchTimeout time.Duration

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by
// passing arbitrary slices. The function is deterministic and does not
// read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("reviewserver", flag.ContinueOnError)
	var (
		addr    = fs.String("addr", ":8080", "HTTP listen address")
		apiURL  = fs.String("api", "http://localhost:9999", "Reviewers API origin")
		storage = fs.String("storage", "", "SQLite payload cache path (empty disables caching)")
		static  = fs.String("static", "", "Review UI asset directory (empty disables index serving)")
		timeout = fs.Duration("fetch-timeout", 0, "Timeout for a single API request (0=default)")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(nil)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &CLIArgs{
		ListenAddr:   strings.TrimSpace(*addr),
		APIBaseURL:   strings.TrimRight(strings.TrimSpace(*apiURL), "/"),
		StoragePath:  *storage,
		StaticDir:    *static,
		FetchTimeout: *timeout,
		RawArgs:      args,
	}, nil
}
