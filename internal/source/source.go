// Package source is the file-system collaborator used by the scanner and the
// generator. It wraps afero so the same code runs against the real disk and
// an in-memory tree in tests.
//
// Writes go through a temporary sibling file that is synced and renamed over
// the target, so readers never observe a half-written barrel and a replaced
// file keeps its path identity.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	berrors "github.com/conneroisu/barrel/internal/errors"
)

// Entry is a directory child as reported by ListChildren.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
	Size  int64
}

// Source abstracts the file-system operations needed to scan and write.
type Source interface {
	// ListChildren returns the children of dir sorted by name.
	ListChildren(ctx context.Context, dir string) ([]Entry, error)
	// Stat describes a single path.
	Stat(path string) (Entry, error)
	// Exists reports whether path exists.
	Exists(path string) (bool, error)
	// ReadText returns the content of a file.
	ReadText(path string) (string, error)
	// CreateFile writes a new file.
	CreateFile(path, content string) error
	// ReplaceText replaces the whole content of an existing file in place.
	ReplaceText(path, content string) error
}

// FS is a Source backed by an afero file system.
type FS struct {
	fs afero.Fs
}

var _ Source = (*FS)(nil)

// New wraps fs.
func New(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewOS returns a Source backed by the operating system.
func NewOS() *FS {
	return New(afero.NewOsFs())
}

// NewMemory returns a Source backed by an in-memory file system.
func NewMemory() *FS {
	return New(afero.NewMemMapFs())
}

// Fs exposes the underlying file system.
func (s *FS) Fs() afero.Fs {
	return s.fs
}

func (s *FS) ListChildren(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, berrors.ErrFileNotFound(dir)
		}
		return nil, berrors.WrapIO(err, berrors.ErrCodeReadFailed, "listing directory", dir)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			Name:  info.Name(),
			Path:  filepath.Join(dir, info.Name()),
			IsDir: info.IsDir(),
			Size:  info.Size(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

func (s *FS) Stat(path string) (Entry, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, berrors.ErrFileNotFound(path)
		}
		return Entry{}, berrors.WrapIO(err, berrors.ErrCodeReadFailed, "stat", path)
	}
	return Entry{
		Name:  info.Name(),
		Path:  path,
		IsDir: info.IsDir(),
		Size:  info.Size(),
	}, nil
}

func (s *FS) Exists(path string) (bool, error) {
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, berrors.WrapIO(err, berrors.ErrCodeReadFailed, "stat", path)
	}
	return ok, nil
}

func (s *FS) ReadText(path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", berrors.ErrFileNotFound(path)
		}
		return "", berrors.WrapIO(err, berrors.ErrCodeReadFailed, "reading file", path)
	}
	return string(data), nil
}

func (s *FS) CreateFile(path, content string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return berrors.ErrWriteFailed(path, err)
	}
	if err := s.writeAtomic(path, content, 0o644); err != nil {
		return berrors.ErrWriteFailed(path, err)
	}
	return nil
}

func (s *FS) ReplaceText(path, content string) error {
	info, err := s.fs.Stat(path)
	if err != nil {
		return berrors.ErrWriteFailed(path, err)
	}
	if info.IsDir() {
		return berrors.ErrWriteFailed(path, fmt.Errorf("%s is a directory", path))
	}
	if err := s.writeAtomic(path, content, info.Mode().Perm()); err != nil {
		return berrors.ErrWriteFailed(path, err)
	}
	return nil
}

// writeAtomic writes content to a hidden temporary sibling and renames it
// over path.
func (s *FS) writeAtomic(path, content string, perm os.FileMode) error {
	tmp, err := afero.TempFile(s.fs, filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return err
	}

	if _, err := tmp.WriteString(content); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := s.fs.Chmod(tmpName, perm); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}
	return nil
}
