package server

import (
	"time"

	"github.com/Happy-Ferret/addons-code-manager/internal/versions"
)

// CreateSessionRequest mounts a new comparison session.
type CreateSessionRequest struct {
	Lang          string `json:"lang" example:"en-US"`
	AddonID       int64  `json:"addon_id" example:"9999"`
	BaseVersionID int64  `json:"base_version_id" example:"1"`
	HeadVersionID int64  `json:"head_version_id" example:"2"`
	Path          string `json:"path,omitempty" example:"manifest.json"`
}

// SelectFileRequest selects a file within a mounted session.
type SelectFileRequest struct {
	Path string `json:"path" example:"background.js"`
}

// SessionResponse describes one comparison session.
type SessionResponse struct {
	ID         string                  `json:"id"`
	CreatedAt  time.Time               `json:"created_at"`
	Phase      string                  `json:"phase" example:"ready"`
	RedirectTo string                  `json:"redirect_to,omitempty" example:"/en-US/compare/9999/versions/1...2/"`
	Key        *versions.ComparisonKey `json:"key,omitempty"`

	// SelectedPath is the head version's selected file, once metadata
	// has loaded.
	SelectedPath string `json:"selected_path,omitempty"`

	// DiffStatus is not_requested, failed or available.
	DiffStatus string `json:"diff_status"`

	// DiffPaths lists the paths with a cached diff result.
	DiffPaths []string `json:"diff_paths,omitempty"`
}

// DiffResponse carries the diff pane state for one path.
type DiffResponse struct {
	Status string               `json:"status" example:"available"`
	Path   string               `json:"path,omitempty"`
	Diff   *versions.DiffResult `json:"diff,omitempty"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
