package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the bindings of the diff view.
type KeyMap struct {
	Quit           key.Binding
	ToggleFocus    key.Binding
	Up             key.Binding
	Down           key.Binding
	PageUp         key.Binding
	PageDown       key.Binding
	Top            key.Binding
	Bottom         key.Binding
	NextChange     key.Binding
	PrevChange     key.Binding
	ApplyRight     key.Binding
	ApplyLeft      key.Binding
	ToggleSelect   key.Binding
	DeleteLine     key.Binding
	OpenLine       key.Binding
	Undo           key.Binding
	Rediff         key.Binding
	Cancel         key.Binding
	CycleIgnore    key.Binding
	CycleHighlight key.Binding
	ToggleSync     key.Binding
	AddAnchor      key.Binding
	NextAnchor     key.Binding
	CopyChange     key.Binding
	ExportAnchors  key.Binding
	Save           key.Binding
	Help           key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ToggleFocus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch side")),
		Up:             key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "move up")),
		Down:           key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "move down")),
		PageUp:         key.NewBinding(key.WithKeys("ctrl+b", "pgup"), key.WithHelp("ctrl-b", "page up")),
		PageDown:       key.NewBinding(key.WithKeys("ctrl+f", "pgdown"), key.WithHelp("ctrl-f", "page down")),
		Top:            key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:         key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		NextChange:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next change")),
		PrevChange:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous change")),
		ApplyRight:     key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "apply left to right")),
		ApplyLeft:      key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "apply right to left")),
		ToggleSelect:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select line")),
		DeleteLine:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete line")),
		OpenLine:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open line below")),
		Undo:           key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Rediff:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "compare again")),
		Cancel:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel comparison")),
		CycleIgnore:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "whitespace policy")),
		CycleHighlight: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "highlight policy")),
		ToggleSync:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync scroll")),
		AddAnchor:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "add anchor")),
		NextAnchor:     key.NewBinding(key.WithKeys("'"), key.WithHelp("'", "next anchor")),
		CopyChange:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy change")),
		ExportAnchors:  key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "export anchors")),
		Save:           key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl-s", "save")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}
