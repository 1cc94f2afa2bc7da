// Package watcher turns file-system notifications into debounced cycles of
// barrel change events.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/generator"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/scanner"
)

// FileWatcher watches directory trees and delivers debounced change cycles
// to its handlers.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	settings  atomic.Pointer[config.Settings]
	handlers  []ChangeHandler
	roots     []string
	logger    logging.Logger
	mutex     sync.RWMutex
	stopOnce  sync.Once
}

// ChangeHandler handles one cycle of change events.
type ChangeHandler func(ctx context.Context, events []generator.Event) error

// change is a raw notification before it is translated into an event.
type change struct {
	op   fsnotify.Op
	path string
}

// Debouncer groups rapid file changes together
type Debouncer struct {
	delay   time.Duration
	events  chan change
	output  chan []change
	timer   *time.Timer
	pending []change
	mutex   sync.Mutex
}

// NewFileWatcher creates a watcher that waits debounceDelay of quiet before
// delivering a cycle.
func NewFileWatcher(debounceDelay time.Duration, settings *config.Settings, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if settings == nil {
		settings = config.DefaultSettings()
	}

	fw := &FileWatcher{
		watcher: watcher,
		debouncer: &Debouncer{
			delay:  debounceDelay,
			events: make(chan change, 256),
			output: make(chan []change, 16),
		},
		logger: logger.WithComponent("watcher"),
	}
	fw.settings.Store(settings)

	return fw, nil
}

// UpdateSettings swaps the snapshot used to filter events and skip
// directories.
func (fw *FileWatcher) UpdateSettings(settings *config.Settings) {
	if settings != nil {
		fw.settings.Store(settings)
	}
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// Roots returns the roots passed to AddRecursive.
func (fw *FileWatcher) Roots() []string {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()
	return append([]string(nil), fw.roots...)
}

// AddRecursive watches root and every non-hidden directory below it.
func (fw *FileWatcher) AddRecursive(root string) error {
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return fmt.Errorf("invalid root path %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watching %s: not a directory", root)
	}

	if err := fw.addTree(abs, nil); err != nil {
		return err
	}

	fw.mutex.Lock()
	fw.roots = append(fw.roots, abs)
	fw.mutex.Unlock()
	return nil
}

// addTree adds a watch for every directory under dir. When files is not
// nil every regular file found is passed to it.
func (fw *FileWatcher) addTree(dir string, files func(path string)) error {
	filter := scanner.NewFilter(fw.settings.Load())

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			fw.logger.Warn(context.Background(), err, "Skipping unreadable path", "path", path)
			return nil
		}

		if !d.IsDir() {
			if files != nil {
				files(path)
			}
			return nil
		}

		if path != dir && filter.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Start starts the file watcher. It returns immediately; the watcher runs
// until ctx is done or Stop is called.
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.debouncer.start(ctx)
	go fw.processEvents(ctx)
	go fw.watchLoop(ctx)

	return nil
}

// Stop stops the file watcher and cleans up resources
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		fw.debouncer.stop()
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	// A new directory needs its own watches; files that arrived with it
	// never produce events of their own.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if filter := scanner.NewFilter(fw.settings.Load()); filter.SkipDir(info.Name()) {
				return
			}
			err := fw.addTree(event.Name, func(path string) {
				fw.debouncer.add(change{op: fsnotify.Create, path: path})
			})
			if err != nil {
				fw.logger.Warn(ctx, err, "Watching new directory failed", "path", event.Name)
			}
			return
		}
	}

	fw.debouncer.add(change{op: event.Op, path: event.Name})
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case changes := <-fw.debouncer.output:
			events := translate(changes, fw.settings.Load())
			if len(events) == 0 {
				continue
			}

			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			fw.logger.Debug(ctx, "Delivering change cycle", "events", len(events))
			for _, handler := range handlers {
				if err := handler(ctx, events); err != nil {
					fw.logger.Error(ctx, err, "Change handler failed")
				}
			}
		}
	}
}

// translate turns raw notifications into change events. A rename followed
// later in the cycle by a create with the same base name becomes one move;
// an unpaired rename becomes a delete. Write-only updates become changes.
// Duplicate events are dropped and events no barrel could care about are
// filtered out.
func translate(changes []change, settings *config.Settings) []generator.Event {
	var (
		out     []generator.Event
		renames []int
	)

	for _, c := range changes {
		switch {
		case c.op.Has(fsnotify.Rename):
			out = append(out, generator.Deleted(c.path))
			renames = append(renames, len(out)-1)
		case c.op.Has(fsnotify.Create):
			if i := pairRename(out, renames, c.path); i >= 0 {
				out[i] = generator.Moved(out[i].Path, c.path)
				continue
			}
			out = append(out, generator.Created(c.path))
		case c.op.Has(fsnotify.Remove):
			out = append(out, generator.Deleted(c.path))
		case c.op.Has(fsnotify.Write):
			out = append(out, generator.Changed(c.path))
		}
	}

	seen := make(map[generator.Event]struct{}, len(out))
	events := out[:0]
	for _, e := range out {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		if generator.Relevant(e, settings) {
			events = append(events, e)
		}
	}
	return events
}

// pairRename finds the oldest unpaired rename with the same base name as
// path and returns its index in out, or -1.
func pairRename(out []generator.Event, renames []int, path string) int {
	base := filepath.Base(path)
	for _, i := range renames {
		e := out[i]
		if e.Kind == generator.EventDeleted && e.Path != path && filepath.Base(e.Path) == base {
			return i
		}
	}
	return -1
}

// Debouncer implementation
func (d *Debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.stop()
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) add(c change) {
	d.events <- c
}

func (d *Debouncer) addEvent(event change) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	batch := append([]change(nil), d.pending...)
	select {
	case d.output <- batch:
		d.pending = d.pending[:0]
	default:
		// Consumer is behind; keep the cycle and try again later
		d.timer = time.AfterFunc(d.delay, d.flush)
	}
}

func (d *Debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
