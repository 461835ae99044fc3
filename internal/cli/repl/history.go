package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHistorySize is used when no size is configured.
const DefaultHistorySize = 1000

// History is a bounded list of REPL lines backed by an optional file.
// Once full, new lines overwrite the oldest ones.
type History struct {
	ring  []string
	start int
	n     int
	file  string
}

// NewHistory returns a History holding at most size lines. An empty file
// keeps history in memory only.
func NewHistory(file string, size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{ring: make([]string, size), file: file}
}

func (h *History) at(i int) string {
	return h.ring[(h.start+i)%len(h.ring)]
}

// Add records line unless it is blank or repeats the latest entry.
func (h *History) Add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if h.n > 0 && h.at(h.n-1) == line {
		return
	}
	if h.n < len(h.ring) {
		h.ring[(h.start+h.n)%len(h.ring)] = line
		h.n++
		return
	}
	h.ring[h.start] = line
	h.start = (h.start + 1) % len(h.ring)
}

// Get returns the entry index steps back from the newest one, or "" when
// out of range.
func (h *History) Get(index int) string {
	if index < 0 || index >= h.n {
		return ""
	}
	return h.at(h.n - 1 - index)
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []string {
	out := make([]string, h.n)
	for i := range out {
		out[i] = h.at(i)
	}
	return out
}

// Len reports how many entries are held.
func (h *History) Len() int { return h.n }

// Load appends the lines of the history file. A missing file is not an
// error.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	f, err := os.Open(h.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		h.Add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	return nil
}

// Save replaces the history file with the current entries. The file is
// written next to its destination and renamed into place.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	dir := filepath.Dir(h.file)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range h.Entries() {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), h.file)
}
