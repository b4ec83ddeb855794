package anchors

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mergeview/internal/document"
	"mergeview/internal/navigate"
)

type docResolver struct{ doc *document.Document }

func (r docResolver) Resolve(ctx navigate.Context) (int, bool) {
	return navigate.Resolve(ctx, nil, navigate.AllLines(r.doc))
}

func TestRelocateAfterInsertAbove(t *testing.T) {
	doc := document.New("main.go", "package main\n\nfunc main() {\n\tprintln(1)\n}\n")
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	all := []Anchor{
		New("main.go", doc, 3, "check this", 1, now),
		New("other.go", doc, 3, "untouched", 1, now),
	}

	if err := doc.Insert(0, "// header\n// more\n"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	stale := Relocate(all, "main.go", docResolver{doc})
	if stale != 0 {
		t.Fatalf("Relocate() stale=%d want 0", stale)
	}
	if all[0].Line != 5 {
		t.Fatalf("all[0].Line=%d want 5", all[0].Line)
	}
	if all[1].Line != 3 {
		t.Fatalf("all[1].Line=%d want 3", all[1].Line)
	}

	if err := doc.SetText("gone\n"); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}
	if stale := Relocate(all, "main.go", docResolver{doc}); stale != 1 || !all[0].Stale || all[0].Line != 5 {
		t.Fatalf("Relocate() stale=%d anchor=%+v", stale, all[0])
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() missing file error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Load() missing file len=%d want 0", len(got))
	}

	doc := document.New("a.txt", "x\ny\nz\n")
	want := []Anchor{New("a.txt", doc, 1, "middle", 1, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".mergeview", "anchors.json")); err != nil {
		t.Fatalf("anchors file missing: %v", err)
	}

	got, err = s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0].Note != "middle" || got[0].Context.Target != "y" || !got[0].CreatedAt.Equal(want[0].CreatedAt) {
		t.Fatalf("Load()=%+v want %+v", got, want)
	}
}

func TestStoreRejectsGarbage(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil {
		t.Fatalf("Load() expected parse error")
	}
}

func TestExportPlain(t *testing.T) {
	a := Anchor{
		Path:    "a.txt",
		Line:    1,
		Note:    "look",
		Context: navigate.Context{Before: []string{"x"}, Target: "y", After: []string{"z"}},
	}
	got := ExportPlain([]Anchor{a}, "")
	want := "Anchors\n\n1) a.txt:2\n   Note: look\n   Context:\n     x\n     > y\n     z"
	if got != want {
		t.Fatalf("ExportPlain()=%q want %q", got, want)
	}
}

func TestForPath(t *testing.T) {
	all := []Anchor{{Path: "a", Line: 1}, {Path: "b"}, {Path: "a", Line: 2}}
	got := ForPath(all, "a")
	if len(got) != 2 || got[1].Line != 2 {
		t.Fatalf("ForPath()=%+v", got)
	}
}
