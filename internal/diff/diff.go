// Package diff computes per-file diff payloads from two file bodies.
// The demo reviewers API uses it to generate compare responses on the fly
// from its stored version content.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
)

// contextLines is the number of unchanged lines kept around each change
// block, matching unified-diff conventions.
const contextLines = 3

// lineChange is one line of the combined old/new sequence. old is 0 for
// inserted lines and new is 0 for deleted lines.
type lineChange struct {
	kind string
	old  int
	new  int
	text string
}

// Compute diffs oldText against newText and returns the wire-shaped diff
// payload for path. Identical inputs produce a payload with no hunks.
func Compute(path, mimetype, oldText, newText string) *api.DiffPayload {
	payload := &api.DiffPayload{
		Path:     path,
		Mode:     modeFor(oldText, newText),
		Mimetype: mimetype,
	}
	if oldText == newText {
		return payload
	}

	payload.Hunks = buildHunks(lineChanges(oldText, newText))
	return payload
}

func modeFor(oldText, newText string) string {
	switch {
	case oldText == "" && newText != "":
		return "A"
	case oldText != "" && newText == "":
		return "D"
	}
	return "M"
}

// lineChanges produces the full line-by-line change sequence using
// diffmatchpatch's line mode.
func lineChanges(oldText, newText string) []lineChange {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []lineChange
	oldNo, newNo := 0, 0
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				oldNo++
				out = append(out, lineChange{kind: "delete", old: oldNo, text: line})
			case diffmatchpatch.DiffInsert:
				newNo++
				out = append(out, lineChange{kind: "insert", new: newNo, text: line})
			default:
				oldNo++
				newNo++
				out = append(out, lineChange{kind: "normal", old: oldNo, new: newNo, text: line})
			}
		}
	}
	return out
}

// buildHunks groups the change sequence into hunks, keeping contextLines
// of unchanged lines around each block and merging blocks whose context
// would overlap.
func buildHunks(lines []lineChange) []api.HunkPayload {
	var hunks []api.HunkPayload

	i := 0
	for i < len(lines) {
		if lines[i].kind == "normal" {
			i++
			continue
		}

		// Expand backwards for leading context.
		start := i - contextLines
		if start < 0 {
			start = 0
		}

		// Advance to the end of the block: include trailing context and
		// swallow equal runs shorter than twice the context.
		end := i
		lastChange := i
		for end < len(lines) {
			if lines[end].kind != "normal" {
				lastChange = end
				end++
				continue
			}
			if end-lastChange > 2*contextLines {
				break
			}
			end++
		}
		stop := lastChange + contextLines + 1
		if stop > end {
			stop = end
		}
		if stop > len(lines) {
			stop = len(lines)
		}

		hunks = append(hunks, makeHunk(lines[start:stop]))
		i = stop
	}

	return hunks
}

func makeHunk(lines []lineChange) api.HunkPayload {
	h := api.HunkPayload{Changes: make([]api.ChangePayload, 0, len(lines))}

	oldCursor, newCursor := 0, 0
	for _, l := range lines {
		if h.OldStart == 0 && l.old > 0 {
			h.OldStart = l.old
		}
		if h.NewStart == 0 && l.new > 0 {
			h.NewStart = l.new
		}
		if l.old > 0 {
			oldCursor++
		}
		if l.new > 0 {
			newCursor++
		}
		h.Changes = append(h.Changes, api.ChangePayload{
			Content:       l.text,
			Type:          l.kind,
			OldLineNumber: l.old,
			NewLineNumber: l.new,
		})
	}
	h.OldLines = oldCursor
	h.NewLines = newCursor
	return h
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
