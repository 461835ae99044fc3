package confloader

import (
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
)

// DefaultDebounce is the quiet period after the last event of a burst
// before callbacks run.
const DefaultDebounce = 100 * time.Millisecond

// Watcher runs callbacks when watched files are written or recreated.
// Editors often emit several events per save; events for the same file
// within the debounce window produce a single callback.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   logger.Logger
	debounce time.Duration

	mu        sync.Mutex
	files     map[string]struct{}
	callbacks []func(string)

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets the quiet period. Zero delivers every event.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a stopped Watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		logger:   logger.Default(),
		debounce: DefaultDebounce,
		files:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds path. Its directory is watched so that files replaced by
// rename are still seen; events for other files there are ignored.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.fsw.Add(filepath.Dir(path)); err != nil {
		return err
	}
	w.mu.Lock()
	w.files[path] = struct{}{}
	w.mu.Unlock()
	w.logger.Debug("watching configuration file", "path", path)
	return nil
}

// OnChange registers cb. It receives the cleaned path of the file.
func (w *Watcher) OnChange(cb func(path string)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, cb)
	w.mu.Unlock()
}

// Start processes events until Stop.
func (w *Watcher) Start() {
	var (
		pending = make(map[string]struct{})
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	flush := func() {
		for path := range pending {
			delete(pending, path)
			w.notify(path)
		}
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			path, ok := w.relevant(ev)
			if !ok {
				continue
			}
			pending[path] = struct{}{}
			switch {
			case w.debounce <= 0:
				flush()
			case timer == nil:
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			default:
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer, fire = nil, nil
			flush()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("configuration watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync runs Start in a new goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop ends Start and releases the fsnotify watcher. Later calls return nil.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

// relevant returns the cleaned path of a write or create event on a
// watched file.
func (w *Watcher) relevant(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return "", false
	}
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	_, ok := w.files[path]
	w.mu.Unlock()
	return path, ok
}

func (w *Watcher) notify(path string) {
	w.mu.Lock()
	cbs := slices.Clone(w.callbacks)
	w.mu.Unlock()

	w.logger.Debug("configuration file changed", "path", path)
	for _, cb := range cbs {
		cb(path)
	}
}
