package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/barrel/internal/barrel"
	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/scanner"
	"github.com/conneroisu/barrel/internal/types"
)

// EventKind tags a change notification.
type EventKind int

const (
	EventCreated EventKind = iota
	EventDeleted
	EventChanged
	EventMoved
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventDeleted:
		return "deleted"
	case EventChanged:
		return "changed"
	case EventMoved:
		return "moved"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a file change. Path is the file after the change; for moves
// OldPath is where it was before.
type Event struct {
	Kind    EventKind
	Path    string
	OldPath string
}

// Created builds a created event.
func Created(path string) Event { return Event{Kind: EventCreated, Path: path} }

// Deleted builds a deleted event.
func Deleted(path string) Event { return Event{Kind: EventDeleted, Path: path} }

// Changed builds a content-changed event.
func Changed(path string) Event { return Event{Kind: EventChanged, Path: path} }

// Moved builds a move event from oldPath to newPath.
func Moved(oldPath, newPath string) Event {
	return Event{Kind: EventMoved, Path: newPath, OldPath: oldPath}
}

// Dir is the parent directory after the change.
func (e Event) Dir() string {
	return filepath.Dir(e.Path)
}

// OldDir is the parent directory before a move, or "" for other kinds.
func (e Event) OldDir() string {
	if e.Kind != EventMoved || e.OldPath == "" {
		return ""
	}
	return filepath.Dir(e.OldPath)
}

// files returns the paths an event touches.
func (e Event) files() []string {
	switch e.Kind {
	case EventMoved:
		return []string{e.OldPath, e.Path}
	case EventCreated, EventDeleted, EventChanged:
		return []string{e.Path}
	default:
		return nil
	}
}

// Relevant reports whether e concerns a file that can appear in a barrel.
// Private files are not relevant: they never change what a barrel exports.
func Relevant(e Event, settings *config.Settings) bool {
	filter := scanner.NewFilter(settings)
	for _, path := range e.files() {
		if path == "" {
			continue
		}
		unit := filter.Unit(path)
		if filter.IsEligible(unit) && !unit.IsPrivate {
			return true
		}
	}
	return false
}

// AffectedDirectories returns the directories whose barrels an event batch
// may invalidate, each once, in first-seen order. Every event affects its
// parent directory; a move also affects the old parent. When subdirectories
// are flattened into barrels, ancestors up to the enclosing root are
// affected too.
func AffectedDirectories(events []Event, settings *config.Settings, roots ...string) []string {
	seen := make(map[string]struct{})
	var dirs []string

	add := func(dir string) {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, e := range events {
		if !Relevant(e, settings) {
			continue
		}

		parents := []string{e.Dir()}
		if old := e.OldDir(); old != "" {
			parents = append(parents, old)
		}

		for _, parent := range parents {
			add(parent)
			if !settings.IncludeSubdirectories {
				continue
			}
			root, ok := enclosingRoot(parent, roots)
			if !ok {
				continue
			}
			for dir := parent; dir != root; {
				dir = filepath.Dir(dir)
				add(dir)
			}
		}
	}

	return dirs
}

func enclosingRoot(dir string, roots []string) (string, bool) {
	best := ""
	for _, root := range roots {
		root = filepath.Clean(root)
		if dir == root || strings.HasPrefix(dir, root+string(filepath.Separator)) {
			if len(root) > len(best) {
				best = root
			}
		}
	}
	return best, best != ""
}

// HandleEvents applies auto-regeneration to one cycle of change events.
// It does nothing unless auto_generate_on_change is set. Each affected
// directory is handled at most once per call: if it has a barrel and the
// barrel is stale, the barrel is regenerated. Directories without a barrel
// are left alone.
func (g *Generator) HandleEvents(ctx context.Context, events []Event, roots ...string) ([]Result, error) {
	settings := g.settings.Load()
	if !settings.AutoGenerateOnChange {
		return nil, nil
	}

	dirs := AffectedDirectories(events, settings, roots...)
	if len(dirs) == 0 {
		return nil, nil
	}

	g.logger.Debug(ctx, "Handling change events", "events", len(events), "directories", len(dirs))

	items := make([]batchItem, 0, len(dirs))
	for _, dir := range dirs {
		path := barrel.FilePath(dir, settings)
		items = append(items, batchItem{
			target: dir,
			key:    path,
			run: func(ctx context.Context) (*types.AggregatorFile, error) {
				return g.autoRegenerate(ctx, path, settings)
			},
		})
	}

	results, err := g.runBatch(ctx, "handle_events", items)

	// Only report directories that were written or failed
	var out []Result
	for _, r := range results {
		if r.File != nil || r.Err != nil {
			out = append(out, r)
		}
	}
	return out, err
}

func (g *Generator) autoRegenerate(ctx context.Context, path string, settings *config.Settings) (*types.AggregatorFile, error) {
	exists, err := g.src.Exists(path)
	if err != nil || !exists {
		return nil, err
	}

	stale, err := g.needsRegeneration(ctx, path, settings)
	if err != nil || !stale {
		return nil, err
	}

	g.logger.Info(ctx, "Barrel is stale, regenerating", "path", path)
	return g.regenerate(ctx, path, settings)
}
