// Package anchors keeps notes attached to lines of the right-hand document.
// An anchor remembers the text around its line, so it can be found again
// after the document has been edited.
package anchors

import (
	"strconv"
	"time"

	"mergeview/internal/document"
	"mergeview/internal/navigate"
)

type Anchor struct {
	Path      string           `json:"path"`
	Line      int              `json:"line"`
	Note      string           `json:"note"`
	CreatedAt time.Time        `json:"created_at"`
	Context   navigate.Context `json:"context"`
	// Stale is set when the context could not be found on the last relocation.
	Stale bool `json:"stale,omitempty"`
}

// New anchors note to line of doc, capturing radius lines of context.
func New(path string, doc *document.Document, line int, note string, radius int, now time.Time) Anchor {
	ctx := navigate.Capture(doc, line, radius)
	return Anchor{
		Path:      path,
		Line:      min(max(line, 0), doc.LineCount()-1),
		Note:      note,
		CreatedAt: now,
		Context:   ctx,
	}
}

func (a Anchor) Key() string {
	return a.Path + ":" + strconv.Itoa(a.Line)
}

// Resolver finds the current line for a recorded context.
type Resolver interface {
	Resolve(ctx navigate.Context) (int, bool)
}

// Relocate moves every anchor of path to the line its context resolves to.
// Anchors whose context is gone keep their line and are marked stale. It
// returns the number of stale anchors.
func Relocate(all []Anchor, path string, r Resolver) int {
	stale := 0
	for i := range all {
		a := &all[i]
		if a.Path != path {
			continue
		}
		line, ok := r.Resolve(a.Context)
		a.Stale = !ok
		if !ok {
			stale++
			continue
		}
		a.Line = line
	}
	return stale
}

// ForPath returns the anchors of path ordered as stored.
func ForPath(all []Anchor, path string) []Anchor {
	var out []Anchor
	for _, a := range all {
		if a.Path == path {
			out = append(out, a)
		}
	}
	return out
}
