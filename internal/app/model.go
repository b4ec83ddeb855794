package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"mergeview/internal/anchors"
	"mergeview/internal/apply"
	"mergeview/internal/config"
	"mergeview/internal/diffview"
	"mergeview/internal/fragment"
	"mergeview/internal/rediff"
	"mergeview/internal/session"
)

const scrollPadding = 3

type resultMsg struct {
	res rediff.Result
}

type clipboardResultMsg struct {
	what string
	err  error
}

type alertTickMsg struct{}

// Options configures the model around an existing session.
type Options struct {
	// Paths are the files backing each side, empty when a side has no file.
	Paths  [2]string
	Labels [2]string
	Config config.AppConfig
	// Anchors is nil outside a git repository.
	Anchors    *anchors.Store
	AnchorPath string
	Watch      bool
	Log        *zap.Logger
}

// Model is the Bubble Tea state container for one two-sided diff.
type Model struct {
	keys  KeyMap
	ctx   context.Context
	sess  *session.Session
	marks *diffview.Highlights
	log   *zap.Logger

	paths  [2]string
	labels [2]string
	dirty  [2]bool

	focus      fragment.Side
	caret      [2]int
	top        [2]int
	selection  [2]apply.LineSet
	syncScroll bool
	views      [2]viewport.Model

	width    int
	height   int
	ready    bool
	helpOpen bool

	anchorStore       *anchors.Store
	anchorPath        string
	anchorRadius      int
	anchors           []anchors.Anchor
	anchorCursor      int
	anchorInputActive bool
	anchorInput       textinput.Model
	anchorInputErr    string
	anchorLine        int

	watcher *fsnotify.Watcher

	alertMsg   string
	alertUntil time.Time
}

// NewModel wraps sess, whose changes are decorated by marks.
func NewModel(ctx context.Context, sess *session.Session, marks *diffview.Highlights, opts Options) (Model, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "Type a note"
	input.CharLimit = 4096
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	input.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	m := Model{
		keys:         defaultKeyMap(),
		ctx:          ctx,
		sess:         sess,
		marks:        marks,
		log:          log.Named("app"),
		labels:       opts.Labels,
		focus:        fragment.Side1,
		syncScroll:   opts.Config.SyncScroll,
		anchorStore:  opts.Anchors,
		anchorPath:   opts.AnchorPath,
		anchorRadius: opts.Config.AnchorRadius,
		anchorInput:  input,
	}
	for i, l := range m.labels {
		if l == "" {
			m.labels[i] = fragment.Side(i).String()
		}
	}

	if m.anchorStore != nil {
		loaded, err := m.anchorStore.Load()
		if err != nil {
			m.setAlert(fmt.Sprintf("failed to load anchors: %v", err))
		}
		m.anchors = loaded
	}

	paths, err := absPaths(opts.Paths)
	if err != nil {
		return Model{}, err
	}
	m.paths = paths
	if opts.Watch {
		w, err := newWatcher(m.paths)
		if err != nil {
			return Model{}, err
		}
		m.watcher = w
	}

	m.views[0] = viewport.New(1, 1)
	m.views[1] = viewport.New(1, 1)
	return m, nil
}

// Close releases the file watcher. The session belongs to the caller.
func (m Model) Close() {
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

func (m Model) Init() tea.Cmd {
	m.sess.Rediff(m.ctx)
	return tea.Batch(waitForResult(m.sess.Results()), m.watchCmd(), alertTickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.setCaret(m.focus, m.caret[m.focus.Index()])
		return m, nil

	case resultMsg:
		if m.sess.Apply(msg.res) {
			m.afterResult()
		}
		return m, waitForResult(m.sess.Results())

	case fileChangedMsg:
		m.reloadFromDisk(msg)
		return m, m.watchCmd()

	case watchErrMsg:
		m.setAlert(fmt.Sprintf("file watch failed: %v", msg.err))
		return m, m.watchCmd()

	case savedMsg:
		for _, side := range msg.sides {
			m.dirty[side.Index()] = false
		}
		if msg.err != nil {
			m.setAlert(fmt.Sprintf("save failed: %v", msg.err))
			return m, nil
		}
		m.setAlert(fmt.Sprintf("Saved %d file(s).", len(msg.sides)))
		return m, nil

	case clipboardResultMsg:
		if msg.err != nil {
			m.setAlert(fmt.Sprintf("copy failed: %v", msg.err))
			return m, nil
		}
		m.setAlert(fmt.Sprintf("Copied %s to clipboard.", msg.what))
		return m, nil

	case alertTickMsg:
		if m.alertMsg != "" && !m.alertUntil.IsZero() && time.Now().After(m.alertUntil) {
			m.alertMsg = ""
			m.alertUntil = time.Time{}
		}
		return m, alertTickCmd()

	case tea.KeyMsg:
		if m.anchorInputActive {
			return m.handleAnchorInput(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	side := m.focus
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpOpen = !m.helpOpen

	case key.Matches(msg, m.keys.ToggleFocus):
		m.focus = side.Other()
		m.setCaret(m.focus, m.caret[m.focus.Index()])

	case key.Matches(msg, m.keys.Up):
		m.moveCaret(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCaret(1)

	case key.Matches(msg, m.keys.PageUp):
		m.moveCaret(-m.pageSize())

	case key.Matches(msg, m.keys.PageDown):
		m.moveCaret(m.pageSize())

	case key.Matches(msg, m.keys.Top):
		m.setCaret(side, 0)

	case key.Matches(msg, m.keys.Bottom):
		m.setCaret(side, m.sess.Document(side).LineCount()-1)

	case key.Matches(msg, m.keys.NextChange):
		m.jumpToChange(session.Next)

	case key.Matches(msg, m.keys.PrevChange):
		m.jumpToChange(session.Prev)

	case key.Matches(msg, m.keys.ApplyRight):
		m.applySelected(fragment.Side1)

	case key.Matches(msg, m.keys.ApplyLeft):
		m.applySelected(fragment.Side2)

	case key.Matches(msg, m.keys.ToggleSelect):
		m.selection[side.Index()].Toggle(m.caret[side.Index()])

	case key.Matches(msg, m.keys.DeleteLine):
		m.edit(side, deleteLine)

	case key.Matches(msg, m.keys.OpenLine):
		if m.edit(side, openLineBelow) {
			m.moveCaret(1)
		}

	case key.Matches(msg, m.keys.Undo):
		m.undo(side)

	case key.Matches(msg, m.keys.Rediff):
		m.sess.Rediff(m.ctx)

	case key.Matches(msg, m.keys.Cancel):
		if m.sess.Busy() {
			m.sess.Cancel()
		}

	case key.Matches(msg, m.keys.CycleIgnore):
		p := m.sess.Policy()
		p.Ignore = p.Ignore.Next()
		m.sess.SetPolicy(m.ctx, p)
		m.setAlert("Whitespace: " + p.Ignore.String())

	case key.Matches(msg, m.keys.CycleHighlight):
		p := m.sess.Policy()
		p.Highlight = p.Highlight.Next()
		m.sess.SetPolicy(m.ctx, p)
		m.setAlert("Highlight: " + p.Highlight.String())

	case key.Matches(msg, m.keys.ToggleSync):
		m.syncScroll = !m.syncScroll
		m.setCaret(side, m.caret[side.Index()])

	case key.Matches(msg, m.keys.AddAnchor):
		cmd = m.startAnchorInput()

	case key.Matches(msg, m.keys.NextAnchor):
		m.jumpToAnchor()

	case key.Matches(msg, m.keys.CopyChange):
		cmd = m.copyChangeCmd()

	case key.Matches(msg, m.keys.ExportAnchors):
		cmd = m.exportAnchorsCmd()

	case key.Matches(msg, m.keys.Save):
		cmd = m.saveCmd()
	}
	return m, cmd
}

func (m *Model) afterResult() {
	m.clampCarets()
	if m.anchorStore != nil {
		if stale := anchors.Relocate(m.anchors, m.anchorPath, m.sess); stale > 0 {
			m.log.Debug("anchors not found", zap.Int("stale", stale))
		}
	}
	if n := m.sess.Notification(); n != session.NotifyNone {
		m.setAlert(n.String())
	}
}

func (m *Model) pageSize() int {
	return max(1, m.views[m.focus.Index()].Height-1)
}

func (m *Model) moveCaret(delta int) {
	m.setCaret(m.focus, m.caret[m.focus.Index()]+delta)
}

// setCaret moves the caret of side and scrolls it into view. With sync
// scrolling the other side follows through the line mapping.
func (m *Model) setCaret(side fragment.Side, line int) {
	i := side.Index()
	count := m.sess.Document(side).LineCount()
	line = min(max(line, 0), count-1)
	m.caret[i] = line

	h := m.visibleLines()
	m.top[i] = scrollTop(m.top[i], line, h, count, scrollPadding)
	if !m.syncScroll {
		return
	}

	other := side.Other()
	j := other.Index()
	otherCount := m.sess.Document(other).LineCount()
	m.caret[j] = min(m.sess.MapLine(side, line), otherCount-1)
	m.top[j] = min(max(m.sess.MapLine(side, m.top[i]), 0), max(0, otherCount-h))
}

func (m *Model) visibleLines() int {
	if !m.ready {
		return 1
	}
	return paneHeight(m.height, lipgloss.Height(m.footer()), lipgloss.Height(m.dock()))
}

func (m *Model) jumpToChange(dir session.Direction) {
	line, ok := m.sess.ScrollToNearestChange(dir, m.focus, m.caret[m.focus.Index()])
	if !ok {
		if dir == session.Next {
			m.setAlert("No next change.")
		} else {
			m.setAlert("No previous change.")
		}
		return
	}
	m.setCaret(m.focus, line)
}

func (m *Model) selectionOf(side fragment.Side) apply.Selection {
	i := side.Index()
	if m.selection[i].Len() == 0 {
		return apply.CaretSelection(m.caret[i])
	}
	return apply.Selection{
		Lines:        m.selection[i],
		Carets:       1,
		HasSelection: true,
		Caret:        m.caret[i],
	}
}

func (m *Model) applySelected(from fragment.Side) {
	n, err := m.sess.ApplySelected(from, m.selectionOf(from))
	if err != nil {
		m.setAlert(fmt.Sprintf("apply failed: %v", err))
		return
	}
	m.selection[from.Index()] = apply.LineSet{}
	m.dirty[from.Other().Index()] = true
	m.setAlert(fmt.Sprintf("Applied %d change(s).", n))
	m.sess.Rediff(m.ctx)
}

func (m *Model) clampCarets() {
	for i := range m.caret {
		m.caret[i] = min(m.caret[i], m.sess.Document(fragment.Side(i)).LineCount()-1)
	}
}

func (m *Model) setAlert(msg string) {
	m.alertMsg = msg
	m.alertUntil = time.Now().Add(3 * time.Second)
}

func waitForResult(ch <-chan rediff.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return resultMsg{res: res}
	}
}

func alertTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return alertTickMsg{}
	})
}

func truncateLinesToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "")
	}
	return strings.Join(lines, "\n")
}
