package generator

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	berrors "github.com/conneroisu/barrel/internal/errors"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/source"
	"github.com/conneroisu/barrel/internal/types"
)

// writeMode selects what the writer may do with a missing barrel.
type writeMode int

const (
	// createOrReplace creates a missing barrel, unless the content is empty.
	createOrReplace writeMode = iota
	// replaceOnly never creates; a missing barrel is left missing.
	replaceOnly
)

// writer creates or replaces barrel files. Writes to one path are
// serialized through a per-path mutex so two operations never race on the
// same barrel, while writes to different paths proceed in parallel.
type writer struct {
	src    source.Source
	locks  *xsync.MapOf[string, *sync.Mutex]
	logger logging.Logger
}

func newWriter(src source.Source, logger logging.Logger) *writer {
	return &writer{
		src:    src,
		locks:  xsync.NewMapOf[string, *sync.Mutex](),
		logger: logger,
	}
}

func (w *writer) lock(path string) *sync.Mutex {
	if mu, ok := w.locks.Load(path); ok {
		return mu
	}
	actual, _ := w.locks.LoadOrStore(path, &sync.Mutex{})
	return actual
}

// write stores content at path. It returns (nil, nil) when mode or the
// empty-content rule means nothing is written, and (nil, err) when the
// write itself fails. An empty barrel is never created, but an existing one
// is overwritten with empty content rather than deleted.
func (w *writer) write(ctx context.Context, path, content string, mode writeMode) (*types.AggregatorFile, error) {
	mu := w.lock(path)
	mu.Lock()
	defer mu.Unlock()

	exists, err := w.src.Exists(path)
	if err != nil {
		w.logger.Error(ctx, err, "Checking barrel file failed", "path", path)
		return nil, berrors.ErrWriteFailed(path, err)
	}

	if !exists {
		switch {
		case mode == replaceOnly:
			w.logger.Debug(ctx, "Barrel file no longer exists, skipping", "path", path)
			return nil, nil
		case content == "":
			w.logger.Debug(ctx, "No exports, not creating barrel file", "path", path)
			return nil, nil
		}
		err = w.src.CreateFile(path, content)
	} else {
		err = w.src.ReplaceText(path, content)
	}

	if err != nil {
		w.logger.Error(ctx, err, "Writing barrel file failed", "path", path)
		return nil, err
	}

	w.logger.Debug(ctx, "Wrote barrel file", "path", path, "created", !exists, "bytes", len(content))

	return &types.AggregatorFile{
		Path:      path,
		Directory: filepath.Dir(path),
		Name:      filepath.Base(path),
		Created:   !exists,
		Content:   content,
	}, nil
}
