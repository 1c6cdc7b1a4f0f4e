// Command reviewserver boots the review server: the compare-session API
// the review UI talks to, backed by a reviewers API and an optional
// SQLite payload cache.
package main

import (
	"database/sql"
	"log"
	"os"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/app"
	"github.com/Happy-Ferret/addons-code-manager/internal/cache"
	"github.com/Happy-Ferret/addons-code-manager/internal/cli"
	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
	"github.com/Happy-Ferret/addons-code-manager/internal/server"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parsing arguments: %v", err)
	}

	logger := logging.NewStdoutLogger("reviewserver")

	cfg := app.DefaultConfig()
	cfg.ListenAddr = args.ListenAddr
	cfg.APIBaseURL = args.APIBaseURL
	cfg.StoragePath = args.StoragePath
	cfg.StaticDir = args.StaticDir
	if args.FetchTimeout > 0 {
		cfg.FetchTimeout = args.FetchTimeout
	}
	cfg.AuthToken = os.Getenv("REVIEWERS_TOKEN")

	var client api.Client
	client, err = api.NewHTTPClient(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.FetchTimeout,
	}, logger, nil)
	if err != nil {
		log.Fatalf("creating api client: %v", err)
	}

	if cfg.StoragePath != "" {
		db, err := sql.Open("sqlite", cfg.StoragePath)
		if err != nil {
			log.Fatalf("opening payload cache: %v", err)
		}
		defer db.Close()

		client, err = cache.NewCachingClient(db, client, logger)
		if err != nil {
			log.Fatalf("creating payload cache: %v", err)
		}
	}
	defer client.Close()

	sessions := app.NewManager(client, logger)

	srv, err := server.NewServer(server.Config{AppConfig: cfg, Logger: logger}, sessions)
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}
	defer srv.Close()

	logger.Info("review server listening",
		logging.Field{Key: "addr", Value: cfg.ListenAddr},
		logging.Field{Key: "api", Value: cfg.APIBaseURL})

	if err := srv.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
