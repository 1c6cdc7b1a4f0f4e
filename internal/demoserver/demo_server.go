// Package demoserver is a self-contained reviewers API serving a small
// catalog of demo addons. Compare responses are generated live from the
// stored file bodies, so every endpoint the review tool fetches can be
// exercised without network access to a real addons server.
package demoserver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/diff"
)

// DemoServer serves the demo reviewers API.
type DemoServer struct {
	cfg    Config
	addons map[int64]AddonDef
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	addons := make(map[int64]AddonDef)
	for _, a := range GetAllAddons() {
		addons[a.ID] = a
	}
	return &DemoServer{cfg: cfg, addons: addons}
}

// Handler returns the demo API as an http.Handler, usable directly in
// tests via httptest.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v5/reviewers/addon/{addonID}/versions/{versionID}/", s.versionHandler)
	mux.HandleFunc("GET /api/v5/reviewers/addon/{addonID}/versions/{versionRange}/compare/", s.compareHandler)
	mux.HandleFunc("GET /demo/addons", s.catalogHandler)
	return mux
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo reviewers API starting on http://localhost%s\n", addr)
	fmt.Printf("Catalog at http://localhost%s/demo/addons\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *DemoServer) versionHandler(w http.ResponseWriter, r *http.Request) {
	addon, ok := s.addon(r.PathValue("addonID"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "addon not found")
		return
	}
	versionID, err := strconv.ParseInt(r.PathValue("versionID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid version id")
		return
	}
	ver := addon.Version(versionID)
	if ver == nil {
		writeJSONError(w, http.StatusNotFound, "version not found")
		return
	}

	payload := buildVersionPayload(&addon, ver, r.URL.Query().Get("file"), true)
	writeJSON(w, http.StatusOK, payload)
}

func (s *DemoServer) compareHandler(w http.ResponseWriter, r *http.Request) {
	addon, ok := s.addon(r.PathValue("addonID"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "addon not found")
		return
	}

	baseStr, headStr, ok := strings.Cut(r.PathValue("versionRange"), "...")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid version range")
		return
	}
	baseID, err1 := strconv.ParseInt(baseStr, 10, 64)
	headID, err2 := strconv.ParseInt(headStr, 10, 64)
	if err1 != nil || err2 != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid version range")
		return
	}

	base := addon.Version(baseID)
	head := addon.Version(headID)
	if base == nil || head == nil {
		writeJSONError(w, http.StatusNotFound, "version not found")
		return
	}

	payload := api.VersionWithDiffPayload{
		VersionPayload: *buildVersionPayload(&addon, head, r.URL.Query().Get("file"), false),
	}

	path := payload.File.SelectedFile
	var oldContent, oldMime string
	if f := base.File(path); f != nil {
		oldContent = f.Content
		oldMime = f.Mimetype
	}
	var newContent, newMime string
	if f := head.File(path); f != nil {
		newContent = f.Content
		newMime = f.Mimetype
	}
	mime := newMime
	if mime == "" {
		mime = oldMime
	}
	payload.File.Diff = diff.Compute(path, mime, oldContent, newContent)

	writeJSON(w, http.StatusOK, payload)
}

func (s *DemoServer) catalogHandler(w http.ResponseWriter, r *http.Request) {
	type versionInfo struct {
		ID      int64  `json:"id"`
		Version string `json:"version"`
	}
	type addonInfo struct {
		ID       int64         `json:"id"`
		Slug     string        `json:"slug"`
		Name     string        `json:"name"`
		Versions []versionInfo `json:"versions"`
	}

	out := make([]addonInfo, 0, len(s.addons))
	for _, a := range GetAllAddons() {
		info := addonInfo{ID: a.ID, Slug: a.Slug, Name: a.Name}
		for _, v := range a.Versions {
			info.Versions = append(info.Versions, versionInfo{ID: v.ID, Version: v.Version})
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *DemoServer) addon(idStr string) (AddonDef, bool) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return AddonDef{}, false
	}
	a, ok := s.addons[id]
	return a, ok
}

// buildVersionPayload assembles the wire payload for one version. The
// selected file defaults to manifest.json (falling back to the first
// non-directory file); content is included only for version endpoints,
// never for compare responses.
func buildVersionPayload(addon *AddonDef, ver *VersionDef, selected string, includeContent bool) *api.VersionPayload {
	if selected == "" || ver.File(selected) == nil {
		selected = defaultSelection(ver)
	}

	entries := make(map[string]api.FileEntryPayload, len(ver.Files))
	for _, f := range ver.Files {
		filename := f.Path
		if i := strings.LastIndex(f.Path, "/"); i >= 0 {
			filename = f.Path[i+1:]
		}
		entries[f.Path] = api.FileEntryPayload{
			Depth:        strings.Count(f.Path, "/"),
			Filename:     filename,
			MimeCategory: f.MimeCategory,
			Mimetype:     f.Mimetype,
			Path:         f.Path,
			SHA256:       contentHash(f.Content),
			Modified:     ver.Reviewed,
		}
	}

	payload := &api.VersionPayload{
		ID: ver.ID,
		Addon: api.AddonPayload{
			ID:      addon.ID,
			Slug:    addon.Slug,
			Name:    addon.Name,
			IconURL: addon.IconURL,
		},
		File: api.FilePayload{
			ID:           ver.ID,
			Entries:      entries,
			SelectedFile: selected,
		},
		Reviewed: ver.Reviewed,
		Version:  ver.Version,
	}

	if f := ver.File(selected); f != nil {
		payload.File.Size = int64(len(f.Content))
		payload.File.SHA256 = contentHash(f.Content)
		payload.File.Mimetype = f.Mimetype
		payload.File.Created = ver.Reviewed
		if includeContent {
			payload.File.Content = f.Content
		}
	}
	return payload
}

func defaultSelection(ver *VersionDef) string {
	if ver.File("manifest.json") != nil {
		return "manifest.json"
	}
	for _, f := range ver.Files {
		if f.MimeCategory != "directory" {
			return f.Path
		}
	}
	return ""
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
