package versions

import "github.com/Happy-Ferret/addons-code-manager/internal/api"

// State is the immutable version/diff cache. All Apply* methods are pure:
// they leave the receiver untouched and return a new State sharing
// unchanged entries with the old one. A no-op application returns the
// receiver itself, so callers can detect changes by pointer identity.
//
// Selectors hand out references into the state; callers must treat them as
// read-only.
type State struct {
	versions map[VersionID]*Version
	files    map[VersionID]map[string]*FileContent
	diffs    map[ComparisonKey]diffEntry
}

// diffEntry is the tagged cache slot for one comparison: failed, or a
// by-path mapping (possibly empty while a fetch is in flight). Absence of
// the key in State.diffs is the third state, "not requested".
type diffEntry struct {
	failed bool
	byPath map[string]*DiffResult
}

// NewState returns an empty cache.
func NewState() *State {
	return &State{
		versions: map[VersionID]*Version{},
		files:    map[VersionID]map[string]*FileContent{},
		diffs:    map[ComparisonKey]diffEntry{},
	}
}

func (s *State) clone() *State {
	next := &State{
		versions: make(map[VersionID]*Version, len(s.versions)),
		files:    make(map[VersionID]map[string]*FileContent, len(s.files)),
		diffs:    make(map[ComparisonKey]diffEntry, len(s.diffs)),
	}
	for id, v := range s.versions {
		next.versions[id] = v
	}
	for id, byPath := range s.files {
		next.files[id] = byPath
	}
	for key, e := range s.diffs {
		next.diffs[key] = e
	}
	return next
}

// ApplyVersionLoaded normalizes a raw version payload and inserts or
// replaces its metadata.
func (s *State) ApplyVersionLoaded(p *api.VersionPayload) *State {
	v := NewVersion(p)
	next := s.clone()
	next.versions[v.ID] = v
	return next
}

// ApplyFileLoaded normalizes the file content of a version payload and
// inserts or replaces it at (versionID, path). Loading version metadata
// first is a documented ordering precondition: if the version is not
// present the update is silently discarded.
func (s *State) ApplyFileLoaded(versionID VersionID, path string, p *api.VersionPayload) *State {
	if _, ok := s.versions[versionID]; !ok {
		return s
	}

	next := s.clone()
	byPath := make(map[string]*FileContent, len(s.files[versionID])+1)
	for k, fc := range s.files[versionID] {
		byPath[k] = fc
	}
	byPath[path] = NewFileContent(versionID, path, p)
	next.files[versionID] = byPath
	return next
}

// ApplyDiffBegin marks key as in flight: its mapping becomes empty,
// discarding any previously cached diffs for that key. A new fetch for the
// same key always resets prior partial results.
func (s *State) ApplyDiffBegin(key ComparisonKey) *State {
	next := s.clone()
	next.diffs[key] = diffEntry{byPath: map[string]*DiffResult{}}
	return next
}

// ApplyDiffAborted marks the most recent fetch for key as failed.
func (s *State) ApplyDiffAborted(key ComparisonKey) *State {
	next := s.clone()
	next.diffs[key] = diffEntry{failed: true}
	return next
}

// ApplyDiffLoaded applies a compare response: the head version's metadata
// is normalized and stored together with the diff, and the diff result is
// merged into key's mapping, preserving cached results for other paths.
//
// The response's selected file must resolve to an existing file entry;
// otherwise the whole update is silently discarded. This guards against
// diff responses arriving after a path-selection race.
func (s *State) ApplyDiffLoaded(key ComparisonKey, p *api.VersionWithDiffPayload) *State {
	v := NewVersion(&p.VersionPayload)
	if v.Entry(v.SelectedPath) == nil {
		return s
	}

	byPath := map[string]*DiffResult{}
	if prev, ok := s.diffs[key]; ok && !prev.failed {
		for k, d := range prev.byPath {
			byPath[k] = d
		}
	}
	if p.File.Diff != nil {
		d := NewDiffResult(p.File.Diff)
		path := d.Path
		if path == "" {
			path = v.SelectedPath
		}
		byPath[path] = d
	}

	next := s.clone()
	next.versions[v.ID] = v
	next.diffs[key] = diffEntry{byPath: byPath}
	return next
}

// UpdateSelectedPath updates only the SelectedPath field of the given
// version. Unknown versions and unchanged paths are no-ops returning the
// receiver unchanged.
func (s *State) UpdateSelectedPath(versionID VersionID, path string) *State {
	v, ok := s.versions[versionID]
	if !ok || v.SelectedPath == path {
		return s
	}

	updated := *v
	updated.SelectedPath = path

	next := s.clone()
	next.versions[versionID] = &updated
	return next
}

// Version returns the metadata for id, or nil if never loaded.
func (s *State) Version(id VersionID) *Version {
	return s.versions[id]
}

// DiffMap returns key's per-path diff mapping and its status. The mapping
// is non-nil only for DiffAvailable.
func (s *State) DiffMap(key ComparisonKey) (map[string]*DiffResult, DiffStatus) {
	e, ok := s.diffs[key]
	if !ok {
		return nil, DiffNotRequested
	}
	if e.failed {
		return nil, DiffFailed
	}
	return e.byPath, DiffAvailable
}

// FileContent returns the stored content at (versionID, path) joined with
// its file-tree entry, or nil if the version, the entry, or the content is
// missing.
func (s *State) FileContent(versionID VersionID, path string) *FileContentView {
	v, ok := s.versions[versionID]
	if !ok {
		return nil
	}
	entry := v.Entry(path)
	if entry == nil {
		return nil
	}
	fc, ok := s.files[versionID][path]
	if !ok {
		return nil
	}

	return &FileContentView{
		FileContent: *fc,
		Filename:    entry.Filename,
		MimeType:    entry.MimeType,
		Type:        entry.Type,
	}
}
