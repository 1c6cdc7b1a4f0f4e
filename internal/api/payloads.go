package api

import "time"

// Transport shapes returned by the reviewers API. Field names follow the
// wire format (snake_case); the versions package renames them into the
// internal model during normalization.

// AddonPayload describes the addon a version belongs to.
type AddonPayload struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}

// FileEntryPayload is one node of a version's file tree.
type FileEntryPayload struct {
	Depth        int       `json:"depth"`
	Filename     string    `json:"filename"`
	MimeCategory string    `json:"mime_category"` // image|directory|text|binary
	Mimetype     string    `json:"mimetype"`
	Path         string    `json:"path"`
	SHA256       string    `json:"sha256"`
	Modified     time.Time `json:"modified"`
}

// FilePayload carries the file tree plus, depending on the endpoint,
// the content of the selected file or its diff.
type FilePayload struct {
	ID           int64                       `json:"id"`
	Content      string                      `json:"content,omitempty"`
	Created      time.Time                   `json:"created"`
	Entries      map[string]FileEntryPayload `json:"entries"`
	SelectedFile string                      `json:"selected_file"`
	Size         int64                       `json:"size"`
	SHA256       string                      `json:"sha256"`
	Mimetype     string                      `json:"mimetype"`
	Diff         *DiffPayload                `json:"diff,omitempty"`
}

// VersionPayload is the version-with-content response of
// GET /addon/{addonId}/versions/{versionId}/.
type VersionPayload struct {
	ID       int64        `json:"id"`
	Addon    AddonPayload `json:"addon"`
	File     FilePayload  `json:"file"`
	Reviewed time.Time    `json:"reviewed"`
	Version  string       `json:"version"`
}

// VersionWithDiffPayload is the compare response of
// GET /addon/{addonId}/versions/{base}...{head}/compare/. The embedded
// version describes the head version; File.Diff holds the diff for the
// selected file.
type VersionWithDiffPayload struct {
	VersionPayload
}

// DiffPayload is the raw per-file diff.
type DiffPayload struct {
	Path     string        `json:"path"`
	OldPath  string        `json:"old_path,omitempty"`
	Mode     string        `json:"mode"` // single letter: A|C|D|M|R
	Mimetype string        `json:"mimetype,omitempty"`
	Hunks    []HunkPayload `json:"hunks"`
}

// HunkPayload is one contiguous block of changes.
type HunkPayload struct {
	Header   string          `json:"header,omitempty"`
	OldStart int             `json:"old_start"`
	OldLines int             `json:"old_lines"`
	NewStart int             `json:"new_start"`
	NewLines int             `json:"new_lines"`
	Changes  []ChangePayload `json:"changes"`
}

// ChangePayload is a single diff line. Type is one of insert|delete|normal.
type ChangePayload struct {
	Content       string `json:"content"`
	Type          string `json:"type"`
	OldLineNumber int    `json:"old_line_number"`
	NewLineNumber int    `json:"new_line_number"`
}
