// Package watch turns saved note edits into property field events.
//
// The watcher keeps the last known frontmatter of every note. When a save
// settles it diffs the note against that snapshot and hands one event per
// changed key to a single dispatch goroutine, so handlers never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amonks/recur/note"
	"github.com/amonks/recur/project"
	"github.com/amonks/recur/vault"
	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounce is how long a note must stay unchanged before it is
	// diffed.
	DefaultDebounce = 300 * time.Millisecond

	queueSize = 64
)

// Dispatcher receives field events, one at a time.
type Dispatcher interface {
	HandleBlur(ctx context.Context, ev project.FieldEvent) error
}

// Activator records the note the user is working on.
type Activator interface {
	SetActive(name string) error
}

// Logger receives watcher diagnostics.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Options configures a Watcher.
type Options struct {
	Debounce   time.Duration
	Dispatcher Dispatcher
	Workspace  Activator
	Logger     Logger
	// OnEvent observes every event before it is dispatched.
	OnEvent func(project.FieldEvent)
	// OnDrop observes changes dropped because the dispatch queue was full.
	OnDrop func(n int)
}

// Watcher watches a vault for settled note saves.
type Watcher struct {
	vault    *vault.Vault
	opts     Options
	debounce time.Duration
	fsw      *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]time.Time

	snapMu    sync.Mutex
	snapshots map[string]note.Snapshot

	queue   chan string
	ready   chan struct{}
	dropped atomic.Int64
}

// New returns a watcher over v. Run starts it.
func New(v *vault.Vault, opts Options) (*Watcher, error) {
	if opts.Dispatcher == nil {
		return nil, errors.New("watch: dispatcher is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	return &Watcher{
		vault:     v,
		opts:      opts,
		debounce:  debounce,
		fsw:       fsw,
		pending:   make(map[string]time.Time),
		snapshots: make(map[string]note.Snapshot),
		queue:     make(chan string, queueSize),
		ready:     make(chan struct{}),
	}, nil
}

// Ready is closed once the initial snapshots are taken and every directory
// is watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// DroppedEvents returns the number of changes dropped so far.
func (w *Watcher) DroppedEvents() int64 {
	return w.dropped.Load()
}

// Run watches until ctx is done. Changes already queued are dispatched
// before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.baseline(); err != nil {
		return err
	}
	if err := w.addWatchesRecursive(w.vault.Root()); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.dispatchLoop(ctx)
	}()
	defer wg.Wait()
	defer close(w.queue)

	close(w.ready)
	w.opts.Logger.Debugf("watching %s", w.vault.Root())

	tick := w.debounce / 2
	if tick <= 0 {
		tick = w.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Errorf("watch error: %v", err)

		case now := <-ticker.C:
			w.flushSettled(now)
		}
	}
}

// Refresh re-reads a note's snapshot, so its latest content is not reported
// as a change.
func (w *Watcher) Refresh(name string) {
	snap, err := w.vault.Metadata(name)
	w.snapMu.Lock()
	defer w.snapMu.Unlock()
	if err != nil {
		delete(w.snapshots, name)
		return
	}
	w.snapshots[name] = snap
}

func (w *Watcher) baseline() error {
	notes, err := w.vault.Notes()
	if err != nil {
		return err
	}
	for _, name := range notes {
		snap, err := w.vault.Metadata(name)
		if err != nil {
			w.opts.Logger.Debugf("skip %s: %v", name, err)
			continue
		}
		w.snapMu.Lock()
		w.snapshots[name] = snap
		w.snapMu.Unlock()
	}
	return nil
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(file string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if file != w.vault.Root() && w.skipDir(file) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(file); err != nil {
			w.opts.Logger.Errorf("watch %s: %v", file, err)
		}
		return nil
	})
}

func (w *Watcher) skipDir(file string) bool {
	rel, err := w.vault.Rel(file)
	if err != nil {
		return true
	}
	return vault.IsHidden(rel) || w.vault.Matcher().ExcludesDir(rel)
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	rel, err := w.vault.Rel(event.Name)
	if err != nil {
		return
	}

	if !vault.IsNote(rel) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.skipDir(event.Name) {
				if err := w.addWatchesRecursive(event.Name); err != nil {
					w.opts.Logger.Errorf("watch %s: %v", rel, err)
				}
				w.markNotesUnder(event.Name)
			}
		}
		return
	}
	if w.vault.Matcher().Excludes(rel) {
		return
	}

	w.pendingMu.Lock()
	w.pending[rel] = time.Now()
	w.pendingMu.Unlock()
}

// markNotesUnder queues notes written into a directory before it was
// watched.
func (w *Watcher) markNotesUnder(dir string) {
	now := time.Now()
	filepath.WalkDir(dir, func(file string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if file != dir && w.skipDir(file) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := w.vault.Rel(file)
		if err != nil || !vault.IsNote(rel) || w.vault.Matcher().Excludes(rel) {
			return nil
		}
		w.pendingMu.Lock()
		w.pending[rel] = now
		w.pendingMu.Unlock()
		return nil
	})
}

func (w *Watcher) flushSettled(now time.Time) {
	w.pendingMu.Lock()
	var settled []string
	for name, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			settled = append(settled, name)
			delete(w.pending, name)
		}
	}
	w.pendingMu.Unlock()

	for _, name := range settled {
		w.enqueue(name)
	}
}

func (w *Watcher) enqueue(name string) {
	select {
	case w.queue <- name:
	default:
		total := w.dropped.Add(1)
		w.opts.Logger.Errorf("dispatch queue full, dropped change to %s (%d dropped)", name, total)
		if w.opts.OnDrop != nil {
			w.opts.OnDrop(1)
		}
	}
}

func (w *Watcher) dispatchLoop(ctx context.Context) {
	for name := range w.queue {
		w.dispatch(ctx, name)
	}
}

func (w *Watcher) dispatch(ctx context.Context, name string) {
	after, err := w.vault.Metadata(name)
	if errors.Is(err, vault.ErrNotFound) {
		w.snapMu.Lock()
		delete(w.snapshots, name)
		w.snapMu.Unlock()
		return
	}
	if err != nil {
		w.opts.Logger.Errorf("read %s: %v", name, err)
		return
	}

	w.snapMu.Lock()
	before, known := w.snapshots[name]
	w.snapshots[name] = after
	w.snapMu.Unlock()

	// A note seen for the first time only sets the baseline.
	if !known {
		w.opts.Logger.Debugf("new note %s", name)
		return
	}

	events := project.Changes(name, before, after)
	if len(events) == 0 {
		return
	}
	if w.opts.Workspace != nil {
		if err := w.opts.Workspace.SetActive(name); err != nil {
			w.opts.Logger.Errorf("set active note: %v", err)
		}
	}

	for _, ev := range events {
		ev.Blur = func() { w.Refresh(name) }
		if w.opts.OnEvent != nil {
			w.opts.OnEvent(ev)
		}
		w.opts.Logger.Debugf("%s: %s changed", name, ev.PropertyKey)
		if err := w.opts.Dispatcher.HandleBlur(ctx, ev); err != nil {
			w.opts.Logger.Errorf("%s: %v", name, err)
		}
	}
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Errorf(string, ...any) {}
