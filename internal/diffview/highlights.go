package diffview

import (
	"mergeview/internal/fragment"
	"mergeview/internal/tracker"
)

// Highlights tracks the changes currently shown. It is the session's
// tracker.Decorator: every live change registers a mark and releases it when
// the change is invalidated or destroyed.
type Highlights struct {
	marks   map[*mark]struct{}
	version uint64
}

var _ tracker.Decorator = (*Highlights)(nil)

func NewHighlights() *Highlights {
	return &Highlights{marks: make(map[*mark]struct{})}
}

type mark struct {
	h      *Highlights
	change *tracker.Change
}

func (h *Highlights) Decorate(c *tracker.Change) tracker.Decoration {
	m := &mark{h: h, change: c}
	h.marks[m] = struct{}{}
	h.version++
	return m
}

func (m *mark) Update(c *tracker.Change) {
	m.change = c
	m.h.version++
}

func (m *mark) Release() {
	delete(m.h.marks, m)
	m.h.version++
}

// Version grows whenever a mark is added, moved or released.
func (h *Highlights) Version() uint64 { return h.version }

func (h *Highlights) Len() int { return len(h.marks) }

// At returns the live change covering line on side.
func (h *Highlights) At(side fragment.Side, line int) (*tracker.Change, bool) {
	for m := range h.marks {
		start, end := m.change.StartLine(side), m.change.EndLine(side)
		if line >= start && line < end {
			return m.change, true
		}
	}
	return nil, false
}

// Index maps every line covered on side to its change.
func (h *Highlights) Index(side fragment.Side) map[int]*tracker.Change {
	out := make(map[int]*tracker.Change)
	for m := range h.marks {
		for l := m.change.StartLine(side); l < m.change.EndLine(side); l++ {
			out[l] = m.change
		}
	}
	return out
}
