package anchors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type Store struct {
	path string
}

// NewStore keeps anchors under dir, normally the repository's git dir.
func NewStore(dir string) Store {
	return Store{path: filepath.Join(dir, ".mergeview", "anchors.json")}
}

func (s Store) Path() string { return s.path }

func (s Store) Load() ([]Anchor, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Anchor{}, nil
		}
		return nil, err
	}

	var out []Anchor
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse anchors %s: %w", s.path, err)
	}
	return out, nil
}

func (s Store) Save(anchors []Anchor) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(anchors, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}
