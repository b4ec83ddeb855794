package app

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"mergeview/internal/document"
	"mergeview/internal/fragment"
)

type savedMsg struct {
	sides []fragment.Side
	err   error
}

// deleteLine removes line and one adjacent terminator.
func deleteLine(doc *document.Document, line int) error {
	n := doc.LineCount()
	switch {
	case n == 1:
		return doc.Delete(0, doc.Len())
	case line < n-1:
		return doc.Delete(doc.LineStartOffset(line), doc.LineStartOffset(line+1))
	default:
		return doc.Delete(doc.LineEndOffset(line-1), doc.Len())
	}
}

func openLineBelow(doc *document.Document, line int) error {
	return doc.Insert(doc.LineEndOffset(line), "\n")
}

// edit runs fn on the caret line of side and starts a new comparison. It
// reports whether the document changed.
func (m *Model) edit(side fragment.Side, fn func(*document.Document, int) error) bool {
	doc := m.sess.Document(side)
	if err := fn(doc, m.caret[side.Index()]); err != nil {
		if errors.Is(err, document.ErrReadOnly) {
			m.setAlert(fmt.Sprintf("%s side is read-only.", m.labels[side.Index()]))
			return false
		}
		m.setAlert(fmt.Sprintf("edit failed: %v", err))
		return false
	}
	m.dirty[side.Index()] = true
	m.clampCarets()
	m.sess.Rediff(m.ctx)
	return true
}

func (m *Model) undo(side fragment.Side) {
	name, ok := m.sess.Document(side).Undo()
	if !ok {
		m.setAlert("Nothing to undo.")
		return
	}
	if name != "" {
		m.setAlert("Undid: " + name)
	}
	m.dirty[side.Index()] = true
	m.clampCarets()
	m.sess.Rediff(m.ctx)
}

// reloadFromDisk replaces a side's text with what the watcher read, unless
// the side has unsaved edits.
func (m *Model) reloadFromDisk(msg fileChangedMsg) {
	i := msg.side.Index()
	if msg.err != nil {
		m.log.Warn("reload failed", zap.String("path", m.paths[i]), zap.Error(msg.err))
		m.setAlert(fmt.Sprintf("failed to reload %s: %v", m.labels[i], msg.err))
		return
	}
	doc := m.sess.Document(msg.side)
	if doc.Text() == msg.text {
		return
	}
	if m.dirty[i] {
		m.setAlert(fmt.Sprintf("%s changed on disk; keeping unsaved edits.", m.labels[i]))
		return
	}
	if err := doc.SetText(msg.text); err != nil {
		m.setAlert(fmt.Sprintf("failed to reload %s: %v", m.labels[i], err))
		return
	}
	m.log.Debug("reloaded from disk", zap.String("path", m.paths[i]))
	m.clampCarets()
	m.sess.Rediff(m.ctx)
}

// saveCmd writes every edited side that is backed by a file.
func (m Model) saveCmd() tea.Cmd {
	type job struct {
		side fragment.Side
		path string
		text string
	}
	var jobs []job
	for i, path := range m.paths {
		side := fragment.Side(i)
		if path == "" || !m.dirty[i] || m.sess.Document(side).ReadOnly() {
			continue
		}
		jobs = append(jobs, job{side: side, path: path, text: m.sess.Document(side).Text()})
	}
	if len(jobs) == 0 {
		return func() tea.Msg { return savedMsg{} }
	}
	return func() tea.Msg {
		var saved []fragment.Side
		for _, j := range jobs {
			if err := os.WriteFile(j.path, []byte(j.text), 0o644); err != nil {
				return savedMsg{sides: saved, err: err}
			}
			saved = append(saved, j.side)
		}
		return savedMsg{sides: saved}
	}
}
