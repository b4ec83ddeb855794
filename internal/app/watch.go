package app

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"mergeview/internal/fragment"
)

type fileChangedMsg struct {
	side fragment.Side
	text string
	err  error
}

type watchErrMsg struct {
	err error
}

func absPaths(paths [2]string) ([2]string, error) {
	var out [2]string
	for i, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return out, err
		}
		out[i] = abs
	}
	return out, nil
}

// newWatcher watches the directories holding paths. Editors often save by
// renaming a temporary file over the original, which a watch on the file
// itself would miss.
func newWatcher(paths [2]string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return w, nil
}

// sideForPath returns the side backed by name.
func sideForPath(paths [2]string, name string) (fragment.Side, bool) {
	name = filepath.Clean(name)
	for i, p := range paths {
		if p != "" && p == name {
			return fragment.Side(i), true
		}
	}
	return fragment.Side1, false
}

// watchCmd waits for the next write to one of the watched files and reads it.
func (m Model) watchCmd() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	paths := m.paths
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				side, ok := sideForPath(paths, ev.Name)
				if !ok {
					continue
				}
				data, err := os.ReadFile(paths[side.Index()])
				return fileChangedMsg{side: side, text: string(data), err: err}

			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}
