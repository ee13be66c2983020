// Package watch reloads a configuration document whenever it changes on disk.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/twconfig/pkg/config"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// LoadFunc loads and validates the watched document.
type LoadFunc func(path string) (*config.Document, []string, error)

// Event is the outcome of one reload. Exactly one of Document and Err is set.
type Event struct {
	Path     string
	Document *config.Document
	Warnings []string
	Err      error
	At       time.Time
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before reloading.
	Debounce time.Duration

	// Load defaults to config.LoadFromFile with Validate.
	Load LoadFunc

	// Validate is used by the default Load.
	Validate config.ValidateOptions

	// Also lists extra files whose changes trigger a reload, such as a
	// custom palette.
	Also []string

	Logger *slog.Logger
}

// Watcher reloads a document on change and reports each reload.
//
//	w, err := watch.New("tailwind/twconfig.yaml", onChange, watch.Options{})
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	path     string
	watched  map[string]bool
	onChange func(Event)
	opts     Options
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	// Debouncing
	timer   *time.Timer
	timerMu sync.Mutex

	// Lifecycle
	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// New creates a watcher for path. onChange is called from the watcher's
// goroutine after every debounced reload, successful or not.
func New(path string, onChange func(Event), opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Load == nil {
		validate := opts.Validate
		opts.Load = func(p string) (*config.Document, []string, error) {
			doc, err := config.LoadFromFile(p, validate)
			if err != nil {
				return nil, nil, err
			}
			return doc, doc.Warnings(validate), nil
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	watched := map[string]bool{abs: true}
	for _, p := range opts.Also {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		watched[a] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		path:     abs,
		watched:  watched,
		onChange: onChange,
		opts:     opts,
		logger:   logger,
		watcher:  fsw,
		stopChan: make(chan struct{}),
	}, nil
}

// Start watches the directories containing the watched files. Directories
// are watched rather than files so that editors replacing a file through a
// rename keep being observed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	dirs := make(map[string]bool)
	for p := range w.watched {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.started = true
	go w.eventLoop()
	w.logger.Info("config watcher started", "path", w.path, "debounce", w.opts.Debounce)
	return nil
}

// Stop stops the watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("config watcher stopped", "path", w.path)
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name, err := filepath.Abs(event.Name)
	if err != nil || !w.watched[name] {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	w.logger.Debug("config file event", "op", event.Op.String(), "file", name)
	w.debounceReload()
}

// debounceReload restarts the quiet-period timer.
func (w *Watcher) debounceReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.reload)
}

// Reload loads the document now and reports the outcome.
func (w *Watcher) Reload() Event {
	ev := Event{Path: w.path, At: time.Now()}
	ev.Document, ev.Warnings, ev.Err = w.opts.Load(w.path)
	return ev
}

func (w *Watcher) reload() {
	select {
	case <-w.stopChan:
		return
	default:
	}

	ev := w.Reload()
	if ev.Err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "error", ev.Err)
	} else {
		w.logger.Info("config reloaded", "path", w.path, "warnings", len(ev.Warnings))
	}
	if w.onChange != nil {
		w.onChange(ev)
	}
}
