package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func fill(h *History, lines ...string) {
	for _, l := range lines {
		h.Add(l)
	}
}

func TestHistory_Add(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		lines []string
		want  []string
	}{
		{"default size", 0, []string{"a", "b"}, []string{"a", "b"}},
		{"consecutive duplicate", 0, []string{"a", "b", "b", "a"}, []string{"a", "b", "a"}},
		{"blank skipped", 0, []string{"a", "  ", ""}, []string{"a"}},
		{"wraps", 3, []string{"a", "b", "c", "d", "e"}, []string{"c", "d", "e"}},
		{"wraps twice", 2, []string{"1", "2", "3", "4", "5"}, []string{"4", "5"}},
		{"empty", 4, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory("", tt.size)
			fill(h, tt.lines...)
			if got := h.Entries(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Entries() = %v, want %v", got, tt.want)
			}
			if h.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", h.Len(), len(tt.want))
			}
		})
	}
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory("", 2)
	fill(h, "first", "second", "third")

	for index, want := range map[int]string{0: "third", 1: "second", 2: "", -1: ""} {
		if got := h.Get(index); got != want {
			t.Errorf("Get(%d) = %q, want %q", index, got, want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(file, 0)
	fill(h, "L1&DB1&O1", "encode hello")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(file), ".history-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}

	loaded := NewHistory(file, 0)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if !reflect.DeepEqual(loaded.Entries(), h.Entries()) {
		t.Errorf("loaded %v, want %v", loaded.Entries(), h.Entries())
	}
}

func TestHistory_Load(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "history")
	if err := os.WriteFile(file, []byte("a\nb\n\nb\nc\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(file, 2)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}
	if got, want := h.Entries(), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	missing := NewHistory(filepath.Join(dir, "missing"), 0)
	if err := missing.Load(); err != nil {
		t.Errorf("Load() on missing file = %v", err)
	}

	if err := NewHistory(dir, 0).Load(); err == nil {
		t.Error("Load() of a directory should fail")
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("", 0)
	h.Add("x")
	if err := h.Save(); err != nil {
		t.Errorf("Save() = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() = %v", err)
	}
	if h.Len() != 1 {
		t.Errorf("Len() = %d", h.Len())
	}
}
