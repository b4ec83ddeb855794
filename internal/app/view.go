package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"mergeview/internal/diffview"
	"mergeview/internal/fragment"
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	footer := m.footer()
	dock := m.dock()
	height := paneHeight(m.height, lipgloss.Height(footer), lipgloss.Height(dock))
	leftW, rightW := paneWidths(m.width)

	anchored := m.anchoredLines()
	invalid := m.sess.InvalidChanges()
	panes := [2]string{}
	for i, w := range []int{leftW, rightW} {
		side := fragment.Side(i)
		in := diffview.PaneInput{
			Doc:      m.sess.Document(side),
			Side:     side,
			Width:    w,
			Cursor:   m.caret[i],
			Marks:    m.marks,
			Invalid:  invalid,
			Selected: m.selection[i].Contains,
		}
		if side == fragment.Side2 {
			in.Anchored = func(line int) bool { return anchored[line] }
		}
		view := m.views[i]
		view.Width = w
		view.Height = height
		view.SetContent(strings.Join(diffview.RenderPane(in), "\n"))
		view.SetYOffset(m.top[i])
		panes[i] = m.renderSidePane(side, w, height, view.View())
	}

	divider := diffview.RenderDivider(m.sess.Mapper(), m.top[0], m.top[1], height)
	dividerBlock := "\n\n" + strings.Join(divider, "\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top, panes[0], dividerBlock, panes[1])
	if dock != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, dock)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (m Model) renderSidePane(side fragment.Side, width, height int, body string) string {
	borderColor := lipgloss.Color("245")
	if m.focus == side {
		borderColor = lipgloss.Color("39")
	}
	paneStyle := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height+1)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor)

	title := m.labels[side.Index()]
	if m.sess.Absent(side) {
		title += " (absent)"
	} else if m.sess.Document(side).ReadOnly() {
		title += " (read-only)"
	}
	if m.dirty[side.Index()] {
		title += " [+]"
	}
	header := lipgloss.NewStyle().Bold(true).Width(width).MaxWidth(width).Render(ansi.Truncate(title, width, ""))
	return paneStyle.Render(header + "\n" + body)
}

func (m Model) statusLine() string {
	parts := []string{m.sess.StatusText()}
	if m.sess.Busy() {
		parts = append(parts, "comparing...")
	}
	if n := m.sess.Notification(); n.String() != "" {
		parts = append(parts, n.String())
	}
	p := m.sess.Policy()
	parts = append(parts, "whitespace: "+p.Ignore.String(), "highlight: "+p.Highlight.String())
	if m.syncScroll {
		parts = append(parts, "sync")
	}
	if n := len(m.liveAnchors()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d anchor(s)", n))
	}
	return strings.Join(parts, " | ")
}

func (m Model) footer() string {
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render(truncateLinesToWidth(m.statusLine(), m.width))
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(truncateLinesToWidth(m.helpText(), m.width))
	return status + "\n" + help
}

func (m Model) helpText() string {
	if !m.helpOpen {
		return "j/k move | n/p change | >/< apply | space select | x/o/u edit | r rediff | w/h policy | s sync | m/' anchors | y copy | ctrl-s save | ? help | q quit"
	}
	return strings.Join([]string{
		"Move: j/k line, ctrl-f/ctrl-b page, g/G top/bottom, tab switch side, n/p next/previous change",
		"Merge: space select line, > apply left to right, < apply right to left",
		"Edit: x delete line, o open line below, u undo, ctrl-s save edited files",
		"Compare: r compare again, esc cancel, w whitespace policy, h highlight policy, s sync scroll",
		"Anchors: m add note on right line, ' next anchor, Y export anchors; y copy change",
	}, "\n")
}

func (m Model) dock() string {
	if m.anchorInputActive {
		return m.renderAnchorDock()
	}
	if m.alertMsg != "" {
		return m.renderAlertDock()
	}
	return ""
}

func (m Model) renderAnchorDock() string {
	contentW := max(10, m.width-2)
	input := m.anchorInput
	input.Width = max(1, contentW-9)
	inputBox := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		Render(input.View())
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Enter save | Esc cancel")

	bodyLines := []string{inputBox, hint}
	if m.anchorInputErr != "" {
		bodyLines = append(bodyLines, lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("Error: "+m.anchorInputErr))
	}
	title := fmt.Sprintf("Anchor at %s:%d", m.labels[fragment.Side2.Index()], m.anchorLine+1)
	return m.renderDockPanel(title, lipgloss.Color("39"), strings.Join(bodyLines, "\n"))
}

func (m Model) renderAlertDock() string {
	return m.renderDockPanel("Notice", lipgloss.Color("220"), m.alertMsg)
}

func (m Model) renderDockPanel(title string, color lipgloss.Color, body string) string {
	contentW := max(10, m.width-2)
	titleBar := lipgloss.NewStyle().
		Width(contentW).
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(color).
		Render(ansi.Truncate(title, max(1, contentW-2), ""))

	bodyBlock := lipgloss.NewStyle().
		Width(contentW).
		Padding(0, 1).
		Render(body)

	return lipgloss.NewStyle().
		Width(contentW).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Render(titleBar + "\n" + bodyBlock)
}
