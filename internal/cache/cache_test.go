package cache_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/cache"
	"github.com/Happy-Ferret/addons-code-manager/internal/testutil"
)

// countingClient serves fixed payloads and counts upstream calls.
type countingClient struct {
	diffCalls    int
	versionCalls int
	diffErr      error
}

func (c *countingClient) GetDiff(ctx context.Context, req api.DiffRequest) (*api.VersionWithDiffPayload, error) {
	c.diffCalls++
	if c.diffErr != nil {
		return nil, c.diffErr
	}
	p := &api.VersionWithDiffPayload{}
	p.ID = req.HeadVersionID
	p.File.SelectedFile = "manifest.json"
	return p, nil
}

func (c *countingClient) GetVersion(ctx context.Context, req api.VersionRequest) (*api.VersionPayload, error) {
	c.versionCalls++
	return &api.VersionPayload{ID: req.VersionID, Version: "1.0"}, nil
}

func (c *countingClient) Close() error { return nil }

// newTestDB opens an in-memory database private to the calling test.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestCache(t *testing.T, inner api.Client) *cache.CachingClient {
	t.Helper()

	c, err := cache.NewCachingClient(newTestDB(t), inner, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewCachingClient: %v", err)
	}
	return c
}

func TestGetDiffServedFromCache(t *testing.T) {
	inner := &countingClient{}
	c := newTestCache(t, inner)

	req := api.DiffRequest{AddonID: 9999, BaseVersionID: 1, HeadVersionID: 2}

	first, err := c.GetDiff(context.Background(), req)
	if err != nil {
		t.Fatalf("first GetDiff: %v", err)
	}
	second, err := c.GetDiff(context.Background(), req)
	if err != nil {
		t.Fatalf("second GetDiff: %v", err)
	}

	if inner.diffCalls != 1 {
		t.Fatalf("got %d upstream calls, want 1", inner.diffCalls)
	}
	if first.ID != second.ID || second.File.SelectedFile != "manifest.json" {
		t.Fatalf("cached payload differs: %+v vs %+v", first, second)
	}
}

func TestGetDiffScopedRequestsCacheSeparately(t *testing.T) {
	inner := &countingClient{}
	c := newTestCache(t, inner)

	base := api.DiffRequest{AddonID: 9999, BaseVersionID: 1, HeadVersionID: 2}
	scoped := base
	scoped.Path = "background.js"

	if _, err := c.GetDiff(context.Background(), base); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetDiff(context.Background(), scoped); err != nil {
		t.Fatal(err)
	}
	if inner.diffCalls != 2 {
		t.Fatalf("scoped request must miss: got %d upstream calls, want 2", inner.diffCalls)
	}

	// Both variants now hit.
	c.GetDiff(context.Background(), base)
	c.GetDiff(context.Background(), scoped)
	if inner.diffCalls != 2 {
		t.Fatalf("got %d upstream calls after warm cache, want 2", inner.diffCalls)
	}
}

func TestGetVersionServedFromCache(t *testing.T) {
	inner := &countingClient{}
	c := newTestCache(t, inner)

	req := api.VersionRequest{AddonID: 9999, VersionID: 3, Path: "manifest.json"}
	for i := 0; i < 3; i++ {
		p, err := c.GetVersion(context.Background(), req)
		if err != nil {
			t.Fatalf("GetVersion %d: %v", i, err)
		}
		if p.ID != 3 || p.Version != "1.0" {
			t.Fatalf("GetVersion %d: payload %+v", i, p)
		}
	}
	if inner.versionCalls != 1 {
		t.Fatalf("got %d upstream calls, want 1", inner.versionCalls)
	}
}

func TestUpstreamErrorsAreNotCached(t *testing.T) {
	inner := &countingClient{diffErr: &api.ErrorResponse{Status: 502, Message: "bad gateway"}}
	c := newTestCache(t, inner)

	req := api.DiffRequest{AddonID: 9999, BaseVersionID: 1, HeadVersionID: 2}
	if _, err := c.GetDiff(context.Background(), req); !api.IsErrorResponse(err) {
		t.Fatalf("got %v, want the upstream error passed through", err)
	}

	// Recovery: the next call goes upstream again and succeeds.
	inner.diffErr = nil
	if _, err := c.GetDiff(context.Background(), req); err != nil {
		t.Fatalf("GetDiff after recovery: %v", err)
	}
	if inner.diffCalls != 2 {
		t.Fatalf("got %d upstream calls, want 2", inner.diffCalls)
	}
}

func TestNewCachingClientValidatesArguments(t *testing.T) {
	if _, err := cache.NewCachingClient(nil, &countingClient{}, &testutil.DummyLogger{}); err == nil {
		t.Fatal("expected an error for a nil database")
	}

	if _, err := cache.NewCachingClient(newTestDB(t), nil, &testutil.DummyLogger{}); err == nil {
		t.Fatal("expected an error for a nil inner client")
	}
}
