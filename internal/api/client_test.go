package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/testutil"
)

func newTestClient(t *testing.T, handler http.Handler) (*api.HTTPClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewHTTPClient(api.Config{BaseURL: srv.URL}, &testutil.DummyLogger{}, srv.Client())
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return client, srv
}

func TestGetDiffBuildsCompareURL(t *testing.T) {
	var gotPath, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 2, "version": "1.1", "file": {"id": 2, "entries": {}, "selected_file": "manifest.json"}}`))
	}))

	payload, err := client.GetDiff(context.Background(), api.DiffRequest{
		AddonID: 9999, BaseVersionID: 1, HeadVersionID: 2, Path: "content/tracker.js",
	})
	if err != nil {
		t.Fatalf("GetDiff: %v", err)
	}

	if want := "/api/v5/reviewers/addon/9999/versions/1...2/compare/"; gotPath != want {
		t.Errorf("got path %q, want %q", gotPath, want)
	}
	if want := "file=content%2Ftracker.js"; gotQuery != want {
		t.Errorf("got query %q, want %q", gotQuery, want)
	}
	if payload.ID != 2 || payload.File.SelectedFile != "manifest.json" {
		t.Errorf("payload not decoded: %+v", payload)
	}
}

func TestGetVersionBuildsVersionURL(t *testing.T) {
	var gotPath, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 3, "file": {"content": "{}"}}`))
	}))

	payload, err := client.GetVersion(context.Background(), api.VersionRequest{
		AddonID: 9999, VersionID: 3,
	})
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}

	if want := "/api/v5/reviewers/addon/9999/versions/3/"; gotPath != want {
		t.Errorf("got path %q, want %q", gotPath, want)
	}
	if gotQuery != "" {
		t.Errorf("unscoped request must have no query, got %q", gotQuery)
	}
	if payload.File.Content != "{}" {
		t.Errorf("payload not decoded: %+v", payload)
	}
}

func TestErrorStatusBecomesErrorResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	_, err := client.GetDiff(context.Background(), api.DiffRequest{AddonID: 1, BaseVersionID: 1, HeadVersionID: 2})
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if !api.IsErrorResponse(err) {
		t.Fatalf("got %T, want *api.ErrorResponse", err)
	}
	var apiErr *api.ErrorResponse
	errors.As(err, &apiErr)
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", apiErr.Status)
	}
}

func TestNetworkFailureBecomesErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := api.NewHTTPClient(api.Config{BaseURL: srv.URL}, &testutil.DummyLogger{}, nil)
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}

	_, err = client.GetVersion(context.Background(), api.VersionRequest{AddonID: 1, VersionID: 1})
	if !api.IsErrorResponse(err) {
		t.Fatalf("got %v, want a tagged ErrorResponse", err)
	}
	var apiErr *api.ErrorResponse
	errors.As(err, &apiErr)
	if apiErr.Status != 0 {
		t.Fatalf("network failure must carry status 0, got %d", apiErr.Status)
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := api.NewHTTPClient(api.Config{}, &testutil.DummyLogger{}, nil); err == nil {
		t.Fatal("expected an error for a missing base URL")
	}
}
