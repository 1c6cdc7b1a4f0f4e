// Package cache provides a SQLite-backed caching decorator around the
// reviewers API client.
package cache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
)

//go:embed schema.sql
var schemaFS embed.FS

// applySchema applies the SQLite schema to the database and sets appropriate pragmas.
func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// CachingClient wraps an api.Client and serves repeated requests from a
// SQLite payload cache. Cache read or write failures degrade to a plain
// passthrough with a warning; they never surface to the caller.
type CachingClient struct {
	db     *sql.DB
	inner  api.Client
	logger logging.Logger
}

var _ api.Client = (*CachingClient)(nil)

// NewCachingClient applies the cache schema to db and returns the
// decorated client. The caller keeps ownership of db.
func NewCachingClient(db *sql.DB, inner api.Client, logger logging.Logger) (*CachingClient, error) {
	if db == nil {
		return nil, fmt.Errorf("cache: db is nil")
	}
	if inner == nil {
		return nil, fmt.Errorf("cache: inner client is nil")
	}
	if err := applySchema(db); err != nil {
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}

	return &CachingClient{
		db:     db,
		inner:  inner,
		logger: logger.With(logging.Field{Key: "component", Value: "cache"}),
	}, nil
}

func (c *CachingClient) GetDiff(ctx context.Context, req api.DiffRequest) (*api.VersionWithDiffPayload, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM diff_payloads
		 WHERE addon_id = ? AND base_version_id = ? AND head_version_id = ? AND file_path = ?`,
		req.AddonID, req.BaseVersionID, req.HeadVersionID, req.Path).Scan(&raw)
	switch {
	case err == nil:
		var out api.VersionWithDiffPayload
		if uerr := json.Unmarshal([]byte(raw), &out); uerr == nil {
			c.logger.Debug("diff cache hit",
				logging.Field{Key: "addon", Value: req.AddonID},
				logging.Field{Key: "path", Value: req.Path})
			return &out, nil
		}
		// Corrupt row: fall through to the network and overwrite it.
		c.logger.Warn("discarding unreadable diff cache row",
			logging.Field{Key: "addon", Value: req.AddonID})
	case err != sql.ErrNoRows:
		c.logger.Warn("diff cache read failed", logging.Field{Key: "error", Value: err.Error()})
	}

	payload, err := c.inner.GetDiff(ctx, req)
	if err != nil {
		return nil, err
	}

	if enc, merr := json.Marshal(payload); merr == nil {
		_, werr := c.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO diff_payloads
			 (addon_id, base_version_id, head_version_id, file_path, payload, fetched_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			req.AddonID, req.BaseVersionID, req.HeadVersionID, req.Path, string(enc), time.Now().Unix())
		if werr != nil {
			c.logger.Warn("diff cache write failed", logging.Field{Key: "error", Value: werr.Error()})
		}
	}
	return payload, nil
}

func (c *CachingClient) GetVersion(ctx context.Context, req api.VersionRequest) (*api.VersionPayload, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM version_payloads
		 WHERE addon_id = ? AND version_id = ? AND file_path = ?`,
		req.AddonID, req.VersionID, req.Path).Scan(&raw)
	switch {
	case err == nil:
		var out api.VersionPayload
		if uerr := json.Unmarshal([]byte(raw), &out); uerr == nil {
			c.logger.Debug("version cache hit",
				logging.Field{Key: "version", Value: req.VersionID},
				logging.Field{Key: "path", Value: req.Path})
			return &out, nil
		}
		c.logger.Warn("discarding unreadable version cache row",
			logging.Field{Key: "version", Value: req.VersionID})
	case err != sql.ErrNoRows:
		c.logger.Warn("version cache read failed", logging.Field{Key: "error", Value: err.Error()})
	}

	payload, err := c.inner.GetVersion(ctx, req)
	if err != nil {
		return nil, err
	}

	if enc, merr := json.Marshal(payload); merr == nil {
		_, werr := c.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO version_payloads
			 (addon_id, version_id, file_path, payload, fetched_at)
			 VALUES (?, ?, ?, ?, ?)`,
			req.AddonID, req.VersionID, req.Path, string(enc), time.Now().Unix())
		if werr != nil {
			c.logger.Warn("version cache write failed", logging.Field{Key: "error", Value: werr.Error()})
		}
	}
	return payload, nil
}

// Close closes the inner client. The database handle stays open; its owner
// closes it.
func (c *CachingClient) Close() error {
	return c.inner.Close()
}
