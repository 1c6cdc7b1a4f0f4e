package versions

import "time"

// VersionID identifies one build/version of an addon package.
type VersionID int64

// EntryType classifies a file-tree entry for rendering purposes.
type EntryType string

const (
	TypeImage     EntryType = "image"
	TypeDirectory EntryType = "directory"
	TypeText      EntryType = "text"
	TypeBinary    EntryType = "binary"
)

// FileOperation is the whole-file status of a diff, derived from the
// single-letter mode code of the transport payload.
type FileOperation string

const (
	OperationAdd    FileOperation = "add"
	OperationCopy   FileOperation = "copy"
	OperationDelete FileOperation = "delete"
	OperationModify FileOperation = "modify"
	OperationRename FileOperation = "rename"
)

// ChangeKind is the kind of a single diff line.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeDelete ChangeKind = "delete"
	ChangeNormal ChangeKind = "normal"
)

// AddonInfo describes the addon a version belongs to.
type AddonInfo struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// FileEntry is one node of a version's file tree. Paths are unique within
// one version.
type FileEntry struct {
	Depth    int       `json:"depth"`
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	Type     EntryType `json:"type"`
	MimeType string    `json:"mimeType,omitempty"`
	SHA256   string    `json:"sha256,omitempty"`
	Modified time.Time `json:"modified"`
}

// Version is the normalized metadata for one addon version. SelectedPath is
// the only field updated in place after load (via UpdateSelectedPath); a
// refetch replaces the whole record.
type Version struct {
	ID           VersionID   `json:"id"`
	Addon        AddonInfo   `json:"addon"`
	Entries      []FileEntry `json:"entries"`
	Reviewed     time.Time   `json:"reviewed"`
	Version      string      `json:"version"`
	SelectedPath string      `json:"selectedPath"`
}

// Entry returns the file entry at path, or nil if the version has none.
func (v *Version) Entry(path string) *FileEntry {
	for i := range v.Entries {
		if v.Entries[i].Path == path {
			return &v.Entries[i]
		}
	}
	return nil
}

// FileContent is the stored content of one file within one version.
type FileContent struct {
	VersionID VersionID `json:"versionId"`
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Created   time.Time `json:"created"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256,omitempty"`
}

// FileContentView joins a FileContent with its file-tree entry for
// convenient consumption by the presentation layer.
type FileContentView struct {
	FileContent

	Filename string    `json:"filename"`
	MimeType string    `json:"mimeType,omitempty"`
	Type     EntryType `json:"type"`
}

// Change is a single normalized diff line. LineNumber is the display line
// number: the new line number for inserted and normal lines, the old line
// number otherwise.
type Change struct {
	Content       string     `json:"content"`
	Kind          ChangeKind `json:"kind"`
	LineNumber    int        `json:"lineNumber"`
	OldLineNumber int        `json:"oldLineNumber"`
	NewLineNumber int        `json:"newLineNumber"`
}

// Hunk is a contiguous block of changed lines.
type Hunk struct {
	Header   string   `json:"header,omitempty"`
	OldStart int      `json:"oldStart"`
	OldLines int      `json:"oldLines"`
	NewStart int      `json:"newStart"`
	NewLines int      `json:"newLines"`
	Changes  []Change `json:"changes"`
}

// DiffResult is the normalized per-file diff for one path within one
// comparison.
type DiffResult struct {
	Path      string        `json:"path"`
	OldPath   string        `json:"oldPath,omitempty"`
	MimeType  string        `json:"mimeType,omitempty"`
	Operation FileOperation `json:"operation"`
	Hunks     []Hunk        `json:"hunks"`
}

// ComparisonKey identifies one base/head comparison for one addon.
type ComparisonKey struct {
	AddonID       int64     `json:"addonId"`
	BaseVersionID VersionID `json:"baseVersionId"`
	HeadVersionID VersionID `json:"headVersionId"`
}

// DiffStatus is the three-state status of a comparison's diff cache. The
// distinction between "never requested" and "failed" is load-bearing for
// the UI's error vs. loading decision.
type DiffStatus int

const (
	DiffNotRequested DiffStatus = iota
	DiffFailed
	DiffAvailable
)

func (s DiffStatus) String() string {
	switch s {
	case DiffFailed:
		return "failed"
	case DiffAvailable:
		return "available"
	default:
		return "not_requested"
	}
}
