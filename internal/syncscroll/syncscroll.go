// Package syncscroll maps line numbers between the two sides of a diff so the
// panes can scroll together.
package syncscroll

import "mergeview/internal/fragment"

// Block is one changed region: [Start1, End1) on side 1 aligned with
// [Start2, End2) on side 2.
type Block struct {
	Start1, End1 int
	Start2, End2 int
}

// Mapper is a piecewise-linear mapping built from ordered, non-overlapping
// blocks. It is immutable.
type Mapper struct {
	blocks     []Block
	lineCount1 int
	lineCount2 int
}

func New(blocks []Block, lineCount1, lineCount2 int) *Mapper {
	return &Mapper{blocks: blocks, lineCount1: lineCount1, lineCount2: lineCount2}
}

type point struct {
	line [2]int
	// inBlock marks the segment from this point to the next as changed.
	inBlock bool
}

func (m *Mapper) points(yield func(point) bool) bool {
	if !yield(point{}) {
		return false
	}
	for _, b := range m.blocks {
		if !yield(point{line: [2]int{b.Start1, b.Start2}, inBlock: true}) {
			return false
		}
		if !yield(point{line: [2]int{b.End1, b.End2}}) {
			return false
		}
	}
	return yield(point{line: [2]int{m.lineCount1, m.lineCount2}})
}

// Walk visits the correspondence points in ascending order: (0, 0), the start
// and end of every block, then (lineCount1, lineCount2). It stops as soon as
// fn returns false and reports whether the walk ran to completion.
func (m *Mapper) Walk(fn func(line1, line2 int) bool) bool {
	return m.points(func(p point) bool {
		return fn(p.line[0], p.line[1])
	})
}

// Blocks visits the blocks in order until fn returns false.
func (m *Mapper) Blocks(fn func(Block) bool) {
	for _, b := range m.blocks {
		if !fn(b) {
			return
		}
	}
}

func (m *Mapper) Len() int { return len(m.blocks) }

// Transfer maps line on side to the corresponding line on the other side.
// Unchanged stretches map by constant offset; lines inside a block are
// interpolated proportionally and clamped to the block. The result never
// decreases as line grows.
func (m *Mapper) Transfer(side fragment.Side, line int) int {
	if len(m.blocks) == 0 {
		return line
	}
	i := side.Index()
	o := side.Other().Index()

	var prev, next point
	found, first := false, true
	m.points(func(p point) bool {
		if !first && p.line[i] > line {
			next = p
			found = true
			return false
		}
		prev = p
		first = false
		return true
	})
	if !found {
		return max(prev.line[o]+line-prev.line[i], prev.line[o])
	}

	lo, hi := prev.line[o], next.line[o]
	if hi < lo {
		hi = lo
	}
	var r int
	if prev.inBlock {
		span := next.line[i] - prev.line[i]
		r = lo + (line-prev.line[i])*(next.line[o]-prev.line[o])/span
	} else {
		r = lo + line - prev.line[i]
	}
	return min(max(r, lo), hi)
}

// FromChanges builds blocks from the current coordinates of live changes.
func FromChanges[C interface {
	StartLine(fragment.Side) int
	EndLine(fragment.Side) int
}](changes []C) []Block {
	out := make([]Block, 0, len(changes))
	for _, c := range changes {
		out = append(out, Block{
			Start1: c.StartLine(fragment.Side1),
			End1:   c.EndLine(fragment.Side1),
			Start2: c.StartLine(fragment.Side2),
			End2:   c.EndLine(fragment.Side2),
		})
	}
	return out
}
