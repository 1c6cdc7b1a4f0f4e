package versions

import (
	"sort"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
)

// operationsByMode maps the single-letter mode code of a diff payload to
// the whole-file operation. Unrecognized codes fall back to modify.
var operationsByMode = map[string]FileOperation{
	"A": OperationAdd,
	"C": OperationCopy,
	"D": OperationDelete,
	"M": OperationModify,
	"R": OperationRename,
}

func operationFromMode(mode string) FileOperation {
	if op, ok := operationsByMode[mode]; ok {
		return op
	}
	return OperationModify
}

func entryTypeFromCategory(category string) EntryType {
	switch category {
	case "image":
		return TypeImage
	case "directory":
		return TypeDirectory
	case "text":
		return TypeText
	case "binary":
		return TypeBinary
	}
	return TypeBinary
}

func changeKindFromType(t string) ChangeKind {
	switch t {
	case "insert":
		return ChangeInsert
	case "delete":
		return ChangeDelete
	}
	return ChangeNormal
}

// NewVersion normalizes a raw version payload into a Version. Entries (a
// JSON object keyed by path on the wire) come out sorted by path.
func NewVersion(p *api.VersionPayload) *Version {
	entries := make([]FileEntry, 0, len(p.File.Entries))
	for path, e := range p.File.Entries {
		entries = append(entries, FileEntry{
			Depth:    e.Depth,
			Filename: e.Filename,
			Path:     path,
			Type:     entryTypeFromCategory(e.MimeCategory),
			MimeType: e.Mimetype,
			SHA256:   e.SHA256,
			Modified: e.Modified,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	return &Version{
		ID: VersionID(p.ID),
		Addon: AddonInfo{
			ID:      p.Addon.ID,
			Slug:    p.Addon.Slug,
			Name:    p.Addon.Name,
			IconURL: p.Addon.IconURL,
		},
		Entries:      entries,
		Reviewed:     p.Reviewed,
		Version:      p.Version,
		SelectedPath: p.File.SelectedFile,
	}
}

// NewFileContent normalizes the file-content portion of a version payload.
func NewFileContent(versionID VersionID, path string, p *api.VersionPayload) *FileContent {
	return &FileContent{
		VersionID: versionID,
		Path:      path,
		Content:   p.File.Content,
		Created:   p.File.Created,
		Size:      p.File.Size,
		SHA256:    p.File.SHA256,
	}
}

// NewDiffResult normalizes a raw per-file diff payload. The display line
// number of each change is the new line number for inserted and normal
// lines and the old line number otherwise; unified-diff rendering depends
// on this convention.
func NewDiffResult(p *api.DiffPayload) *DiffResult {
	hunks := make([]Hunk, 0, len(p.Hunks))
	for _, h := range p.Hunks {
		changes := make([]Change, 0, len(h.Changes))
		for _, c := range h.Changes {
			kind := changeKindFromType(c.Type)
			lineNumber := c.OldLineNumber
			if kind == ChangeInsert || kind == ChangeNormal {
				lineNumber = c.NewLineNumber
			}
			changes = append(changes, Change{
				Content:       c.Content,
				Kind:          kind,
				LineNumber:    lineNumber,
				OldLineNumber: c.OldLineNumber,
				NewLineNumber: c.NewLineNumber,
			})
		}
		hunks = append(hunks, Hunk{
			Header:   h.Header,
			OldStart: h.OldStart,
			OldLines: h.OldLines,
			NewStart: h.NewStart,
			NewLines: h.NewLines,
			Changes:  changes,
		})
	}

	return &DiffResult{
		Path:      p.Path,
		OldPath:   p.OldPath,
		MimeType:  p.Mimetype,
		Operation: operationFromMode(p.Mode),
		Hunks:     hunks,
	}
}
