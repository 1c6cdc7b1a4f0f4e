package versions_test

import (
	"testing"
	"time"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/versions"
)

var testKey = versions.ComparisonKey{AddonID: 9999, BaseVersionID: 1, HeadVersionID: 2}

// versionPayload builds a head-version payload whose selected file is
// selected and whose tree contains paths.
func versionPayload(t *testing.T, selected string, paths ...string) *api.VersionPayload {
	t.Helper()

	entries := make(map[string]api.FileEntryPayload, len(paths))
	for _, p := range paths {
		entries[p] = api.FileEntryPayload{
			Filename:     p,
			Path:         p,
			MimeCategory: "text",
			Mimetype:     "text/plain",
			Modified:     time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		}
	}
	return &api.VersionPayload{
		ID: 2,
		Addon: api.AddonPayload{
			ID:      9999,
			Slug:    "amazing-extension",
			Name:    "Amazing Extension",
			IconURL: "https://addons.example.org/icons/9999.png",
		},
		File: api.FilePayload{
			ID:           2,
			Entries:      entries,
			SelectedFile: selected,
			Content:      "content of " + selected,
			Size:         42,
			SHA256:       "abc123",
			Created:      time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		},
		Reviewed: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		Version:  "1.1",
	}
}

func diffPayload(t *testing.T, selected string, paths ...string) *api.VersionWithDiffPayload {
	t.Helper()

	p := &api.VersionWithDiffPayload{VersionPayload: *versionPayload(t, selected, paths...)}
	p.File.Content = ""
	p.File.Diff = &api.DiffPayload{
		Path: selected,
		Mode: "M",
		Hunks: []api.HunkPayload{{
			OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1,
			Changes: []api.ChangePayload{
				{Content: "old line", Type: "delete", OldLineNumber: 1},
				{Content: "new line", Type: "insert", NewLineNumber: 1},
			},
		}},
	}
	return p
}

func TestDiffCacheThreeStates(t *testing.T) {
	st := versions.NewState()

	if _, status := st.DiffMap(testKey); status != versions.DiffNotRequested {
		t.Fatalf("fresh key: got status %v, want not requested", status)
	}

	st = st.ApplyDiffBegin(testKey)
	byPath, status := st.DiffMap(testKey)
	if status != versions.DiffAvailable {
		t.Fatalf("after begin: got status %v, want available", status)
	}
	if len(byPath) != 0 {
		t.Fatalf("after begin: got %d entries, want empty mapping", len(byPath))
	}

	st = st.ApplyDiffAborted(testKey)
	if _, status := st.DiffMap(testKey); status != versions.DiffFailed {
		t.Fatalf("after abort: got status %v, want failed", status)
	}

	st = st.ApplyDiffLoaded(testKey, diffPayload(t, "manifest.json", "manifest.json"))
	byPath, status = st.DiffMap(testKey)
	if status != versions.DiffAvailable {
		t.Fatalf("after load: got status %v, want available", status)
	}
	if _, ok := byPath["manifest.json"]; !ok {
		t.Fatalf("after load: mapping is missing the selected path, got %v", byPath)
	}
}

func TestApplyDiffLoadedPreservesSiblings(t *testing.T) {
	paths := []string{"a.js", "b.js", "c.js"}

	st := versions.NewState().ApplyDiffBegin(testKey)
	st = st.ApplyDiffLoaded(testKey, diffPayload(t, "a.js", paths...))
	st = st.ApplyDiffLoaded(testKey, diffPayload(t, "b.js", paths...))
	st = st.ApplyDiffLoaded(testKey, diffPayload(t, "c.js", paths...))

	byPath, status := st.DiffMap(testKey)
	if status != versions.DiffAvailable {
		t.Fatalf("got status %v, want available", status)
	}
	for _, p := range paths {
		if byPath[p] == nil {
			t.Errorf("mapping is missing %s", p)
		}
	}
	if len(byPath) != 3 {
		t.Fatalf("got %d entries, want 3", len(byPath))
	}
}

func TestApplyDiffBeginResetsPriorResults(t *testing.T) {
	st := versions.NewState().ApplyDiffBegin(testKey)
	st = st.ApplyDiffLoaded(testKey, diffPayload(t, "a.js", "a.js"))

	st = st.ApplyDiffBegin(testKey)
	byPath, status := st.DiffMap(testKey)
	if status != versions.DiffAvailable {
		t.Fatalf("got status %v, want available", status)
	}
	if len(byPath) != 0 {
		t.Fatalf("begin must discard cached diffs, still has %d entries", len(byPath))
	}
}

func TestApplyDiffLoadedMissingEntryDiscarded(t *testing.T) {
	st := versions.NewState()

	// Selected file has no matching file entry.
	p := diffPayload(t, "gone.js", "manifest.json")
	next := st.ApplyDiffLoaded(testKey, p)
	if next != st {
		t.Fatal("inconsistent diff response must leave state untouched")
	}
}

func TestUpdateSelectedPathIdempotence(t *testing.T) {
	st := versions.NewState().ApplyVersionLoaded(versionPayload(t, "a.js", "a.js", "b.js"))

	// Unknown version: identity no-op.
	if next := st.UpdateSelectedPath(42, "b.js"); next != st {
		t.Fatal("update for unknown version must be an identity no-op")
	}

	// Unchanged path: identity no-op.
	if next := st.UpdateSelectedPath(2, "a.js"); next != st {
		t.Fatal("update with unchanged path must be an identity no-op")
	}

	next := st.UpdateSelectedPath(2, "b.js")
	if next == st {
		t.Fatal("changed path must produce a new state")
	}
	if got := next.Version(2).SelectedPath; got != "b.js" {
		t.Fatalf("got selected path %q, want b.js", got)
	}
	// The old state must be untouched.
	if got := st.Version(2).SelectedPath; got != "a.js" {
		t.Fatalf("prior state mutated: selected path became %q", got)
	}
}

func TestApplyFileLoadedRequiresVersion(t *testing.T) {
	st := versions.NewState()

	p := versionPayload(t, "a.js", "a.js")
	if next := st.ApplyFileLoaded(2, "a.js", p); next != st {
		t.Fatal("file content for an unknown version must be discarded")
	}

	st = st.ApplyVersionLoaded(p)
	st = st.ApplyFileLoaded(2, "a.js", p)

	fc := st.FileContent(2, "a.js")
	if fc == nil {
		t.Fatal("expected file content after version + file load")
	}
	if fc.Content != "content of a.js" {
		t.Fatalf("got content %q", fc.Content)
	}
	// Joined fields come from the file entry.
	if fc.Filename != "a.js" || fc.Type != versions.TypeText || fc.MimeType != "text/plain" {
		t.Fatalf("joined entry fields wrong: %+v", fc)
	}
}

func TestFileContentMissingPieces(t *testing.T) {
	p := versionPayload(t, "a.js", "a.js")
	st := versions.NewState().ApplyVersionLoaded(p)

	if got := st.FileContent(7, "a.js"); got != nil {
		t.Fatalf("unknown version: got %+v, want nil", got)
	}
	if got := st.FileContent(2, "nope.js"); got != nil {
		t.Fatalf("unknown entry: got %+v, want nil", got)
	}
	// Entry exists but content was never loaded.
	if got := st.FileContent(2, "a.js"); got != nil {
		t.Fatalf("content not loaded: got %+v, want nil", got)
	}
}

func TestApplyVersionLoadedReplacesWholesale(t *testing.T) {
	st := versions.NewState().ApplyVersionLoaded(versionPayload(t, "a.js", "a.js", "b.js"))
	st = st.UpdateSelectedPath(2, "b.js")

	st = st.ApplyVersionLoaded(versionPayload(t, "a.js", "a.js"))
	v := st.Version(2)
	if len(v.Entries) != 1 {
		t.Fatalf("refetch must replace entries, got %d", len(v.Entries))
	}
	if v.SelectedPath != "a.js" {
		t.Fatalf("refetch must replace selected path, got %q", v.SelectedPath)
	}
}
