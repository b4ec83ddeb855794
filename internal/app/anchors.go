package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mergeview/internal/anchors"
	"mergeview/internal/clipboard"
	"mergeview/internal/fragment"
)

// startAnchorInput opens the note prompt for the right-hand line under the
// caret, mapping the caret across when the left side has focus.
func (m *Model) startAnchorInput() tea.Cmd {
	if m.anchorStore == nil {
		m.setAlert("Anchors need a git repository.")
		return nil
	}
	line := m.caret[fragment.Side2.Index()]
	if m.focus == fragment.Side1 {
		line = m.sess.MapLine(fragment.Side1, m.caret[0])
	}
	m.anchorLine = min(line, m.sess.Document(fragment.Side2).LineCount()-1)

	existing := ""
	for _, a := range m.anchors {
		if a.Path == m.anchorPath && a.Line == m.anchorLine && !a.Stale {
			existing = a.Note
			break
		}
	}
	m.anchorInputActive = true
	m.anchorInputErr = ""
	m.anchorInput.SetValue(existing)
	m.anchorInput.CursorEnd()
	return m.anchorInput.Focus()
}

func (m Model) handleAnchorInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeAnchorInput()
		return m, nil

	case tea.KeyEnter:
		m.saveAnchorInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.anchorInput, cmd = m.anchorInput.Update(msg)
	m.anchorInputErr = ""
	return m, cmd
}

func (m *Model) closeAnchorInput() {
	m.anchorInputActive = false
	m.anchorInput.SetValue("")
	m.anchorInput.Blur()
	m.anchorInputErr = ""
}

func (m *Model) saveAnchorInput() {
	note := strings.TrimSpace(m.anchorInput.Value())
	if note == "" {
		m.anchorInputErr = "Note is empty."
		return
	}

	a := anchors.New(m.anchorPath, m.sess.Document(fragment.Side2), m.anchorLine, note, m.anchorRadius, time.Now())
	next := make([]anchors.Anchor, 0, len(m.anchors)+1)
	for _, old := range m.anchors {
		if old.Key() == a.Key() && !old.Stale {
			a.CreatedAt = old.CreatedAt
			continue
		}
		next = append(next, old)
	}
	next = append(next, a)

	if err := m.anchorStore.Save(next); err != nil {
		m.anchorInputErr = fmt.Sprintf("failed to save anchor: %v", err)
		return
	}
	m.anchors = next
	m.closeAnchorInput()
}

// liveAnchors are the anchors of this file whose context was last found.
func (m Model) liveAnchors() []anchors.Anchor {
	var out []anchors.Anchor
	for _, a := range anchors.ForPath(m.anchors, m.anchorPath) {
		if !a.Stale {
			out = append(out, a)
		}
	}
	return out
}

func (m *Model) jumpToAnchor() {
	list := m.liveAnchors()
	if len(list) == 0 {
		m.setAlert("No anchors.")
		return
	}
	m.anchorCursor %= len(list)
	a := list[m.anchorCursor]
	m.anchorCursor++
	m.focus = fragment.Side2
	m.setCaret(fragment.Side2, a.Line)
	m.setAlert(a.Note)
}

func (m Model) anchoredLines() map[int]bool {
	out := make(map[int]bool)
	for _, a := range m.liveAnchors() {
		out[a.Line] = true
	}
	return out
}

func (m *Model) exportAnchorsCmd() tea.Cmd {
	list := anchors.ForPath(m.anchors, m.anchorPath)
	if len(list) == 0 {
		m.setAlert("No anchors to export.")
		return nil
	}
	title := "Anchors in " + m.labels[fragment.Side2.Index()] + ":"
	return copyCmd("anchors", anchors.ExportPlain(list, title))
}

// copyChangeCmd copies the lines of the change under the caret on the
// focused side.
func (m *Model) copyChangeCmd() tea.Cmd {
	side := m.focus
	c, ok := m.sess.ChangeAt(side, m.caret[side.Index()])
	if !ok {
		m.setAlert("No change at cursor.")
		return nil
	}
	lines := m.sess.Document(side).Lines(c.StartLine(side), c.EndLine(side))
	if len(lines) == 0 {
		m.setAlert("Change is empty on this side.")
		return nil
	}
	return copyCmd("change", strings.Join(lines, "\n")+"\n")
}

func copyCmd(what, text string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.CopyText(context.Background(), text)
		return clipboardResultMsg{what: what, err: err}
	}
}
