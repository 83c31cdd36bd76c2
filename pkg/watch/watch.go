// Package watch observes a source tree for build-artifact changes.
//
// The watcher recursively registers every directory under the root, filters
// events down to files with the configured suffixes, and coalesces bursts of
// events (a Holmake run rewrites many artifacts at once) into a single
// callback after a debounce interval.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default event coalescing window.
const DefaultDebounce = 500 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithSuffixes restricts events to files ending with one of the suffixes.
// Without it, all file events are reported.
func WithSuffixes(suffixes []string) Option {
	return func(w *Watcher) { w.suffixes = suffixes }
}

// Watcher watches a directory tree and reports changed artifact paths.
type Watcher struct {
	root     string
	onChange func(changed []string)
	debounce time.Duration
	suffixes []string

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// New creates a watcher over root. onChange receives the coalesced set of
// changed paths; it runs on the watcher goroutine, so long work should be
// handed off. Call Start to begin watching.
func New(root string, onChange func(changed []string), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     abs,
		onChange: onChange,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers the directory tree and begins delivering events.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	if err := w.addRecursive(w.root); err != nil {
		_ = fsw.Close()
		return err
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit. Pending
// debounced events are dropped.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

// addRecursive registers dir and every subdirectory.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient (e.g. a directory vanished mid-walk);
			// the next event cycle re-settles.
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// New directories need their own watch before artifacts appear in them.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
}

func (w *Watcher) matches(path string) bool {
	if len(w.suffixes) == 0 {
		return true
	}
	for _, suffix := range w.suffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// flush delivers the coalesced change set.
func (w *Watcher) flush() {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if len(changed) > 0 && w.onChange != nil {
		w.onChange(changed)
	}
}
