package confloader

import (
	"fmt"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix prefixes every environment variable read by Load.
const DefaultEnvPrefix = "TOKCODEC_"

// Loader merges configuration layers into a struct with koanf tags.
type Loader struct {
	envPrefix string
	file      string
	defaults  map[string]any
	overrides map[string]any

	mu   sync.RWMutex
	last *koanf.Koanf
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile adds a YAML file layer. An empty path adds nothing.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.file = path }
}

// WithDefaults adds a bottom layer of dotted keys ("server.http.addr").
func WithDefaults(values map[string]any) Option {
	return func(l *Loader) { l.defaults = values }
}

// WithOverrides adds a top layer of dotted keys, usually set flags.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) { l.overrides = values }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// layer is one configuration source. Later layers win.
type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

func (l *Loader) layers() []layer {
	var out []layer
	if len(l.defaults) > 0 {
		out = append(out, layer{name: "defaults", provider: dotted(l.defaults)})
	}
	if l.file != "" {
		out = append(out, layer{name: "file " + l.file, provider: file.Provider(l.file), parser: yaml.Parser()})
	}
	out = append(out, layer{name: "env", provider: env.Provider(l.envPrefix, ".", l.envKey)})
	if len(l.overrides) > 0 {
		out = append(out, layer{name: "overrides", provider: dotted(l.overrides)})
	}
	return out
}

// envKey maps TOKCODEC_SERVER_HTTP_ADDR to server.http.addr. Variables
// without a section, such as TOKCODEC_SERVER read by the CLI, map to ""
// and are dropped.
func (l *Loader) envKey(name string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, l.envPrefix)), "_", ".")
	if !strings.Contains(key, ".") {
		return ""
	}
	return key
}

// Load reads every layer from scratch and unmarshals the result into
// target. Fields absent from all layers keep their current value, so
// target may be pre-filled with defaults. Calling Load again after the
// file changed picks up the new content.
func (l *Loader) Load(target any) error {
	k := koanf.New(".")
	for _, ly := range l.layers() {
		if err := k.Load(ly.provider, ly.parser); err != nil {
			return fmt.Errorf("load %s: %w", ly.name, err)
		}
	}
	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.mu.Lock()
	l.last = k
	l.mu.Unlock()
	return nil
}

// Reload is Load under the name used by file watchers.
func (l *Loader) Reload(target any) error {
	return l.Load(target)
}

// FilePath returns the YAML file path, or "".
func (l *Loader) FilePath() string {
	return l.file
}

// Keys returns the sorted keys set by the last successful Load.
func (l *Loader) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.last == nil {
		return nil
	}
	return l.last.Keys()
}

// String returns the value of key from the last successful Load.
func (l *Loader) String(key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.last == nil {
		return ""
	}
	return l.last.String(key)
}
