package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// errNoBytes is returned by dotted.ReadBytes; koanf calls Read instead
// when the parser is nil.
var errNoBytes = errors.New("confloader: dotted map has no byte form")

// dotted is a koanf.Provider over a map with dotted keys. Read expands
// the keys so "server.http.addr" merges with a file's server section.
type dotted map[string]any

func (d dotted) ReadBytes() ([]byte, error) { return nil, errNoBytes }

func (d dotted) Read() (map[string]any, error) {
	return maps.Unflatten(d, "."), nil
}
