// Package scanner provides source-unit discovery for barrel generation.
//
// The scanner walks a directory tree through the source collaborator,
// applies the eligibility filter at each directory and returns immutable
// snapshots. Nothing is cached between calls: every operation rescans, so a
// tree mutated between two operations is always observed fresh.
//
// The walk uses an explicit stack rather than recursion. Directories are
// visited depth-first in pre-order (a directory's own files before any of
// its subdirectories) with children in name order, and the context is
// checked between directories so long walks can be cancelled without
// abandoning a directory half-processed.
package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/conneroisu/barrel/internal/config"
	berrors "github.com/conneroisu/barrel/internal/errors"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/source"
	"github.com/conneroisu/barrel/internal/types"
)

// WalkFunc is called once per visited directory. Returning an error stops
// the walk and the error is returned from Walk.
type WalkFunc func(dir types.Directory) error

// Scanner enumerates eligible source units below a root.
type Scanner struct {
	// src lists and reads the tree
	src source.Source
	// settings is the snapshot the scan runs under
	settings *config.Settings
	// filter applies eligibility to every file
	filter *Filter
	logger logging.Logger
}

// New creates a scanner over src using settings.
func New(src source.Source, settings *config.Settings, logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scanner{
		src:      src,
		settings: settings,
		filter:   NewFilter(settings),
		logger:   logger.WithComponent("scanner"),
	}
}

// Filter returns the eligibility filter used by the scanner.
func (s *Scanner) Filter() *Filter {
	return s.filter
}

// ScanDirectory lists the direct eligible units and descendable
// subdirectories of dir.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string) (types.Directory, error) {
	root, err := validatePath(dir)
	if err != nil {
		return types.Directory{}, err
	}
	return s.scanOne(ctx, root, s.ignoreMatcher(root))
}

// Collect returns the eligible units under root. With recursive set the
// whole subtree is flattened in pre-order; otherwise only the direct
// children of root are returned.
func (s *Scanner) Collect(ctx context.Context, root string, recursive bool) ([]types.SourceUnit, error) {
	if !recursive {
		dir, err := s.ScanDirectory(ctx, root)
		if err != nil {
			return nil, err
		}
		return dir.Units, nil
	}

	var units []types.SourceUnit
	err := s.Walk(ctx, root, func(dir types.Directory) error {
		units = append(units, dir.Units...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// Walk visits root and every descendable directory below it exactly once.
// A subdirectory that cannot be listed is logged and skipped; a root that
// cannot be listed is an error.
func (s *Scanner) Walk(ctx context.Context, root string, fn WalkFunc) error {
	start, err := validatePath(root)
	if err != nil {
		return err
	}
	ignore := s.ignoreMatcher(start)

	stack := []string{start}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dir, err := s.scanOne(ctx, path, ignore)
		if err != nil {
			if path == start {
				return err
			}
			s.logger.Warn(ctx, err, "Skipping unreadable directory", "path", path)
			continue
		}

		if err := fn(dir); err != nil {
			return err
		}

		// Push in reverse so the smallest name is visited next
		for i := len(dir.Subdirectories) - 1; i >= 0; i-- {
			stack = append(stack, dir.Subdirectories[i])
		}
	}
	return nil
}

func (s *Scanner) scanOne(ctx context.Context, dir string, ignore gitignore.IgnoreMatcher) (types.Directory, error) {
	entries, err := s.src.ListChildren(ctx, dir)
	if err != nil {
		return types.Directory{}, err
	}

	result := types.Directory{Path: dir}
	for _, entry := range entries {
		if ignore != nil && ignore.Match(entry.Path, entry.IsDir) {
			continue
		}

		if entry.IsDir {
			if !s.filter.SkipDir(entry.Name) {
				result.Subdirectories = append(result.Subdirectories, entry.Path)
			}
			continue
		}

		unit := s.filter.Unit(entry.Path)
		if s.filter.IsEligible(unit) {
			result.Units = append(result.Units, unit)
		}
	}

	return result, nil
}

// ignoreMatcher loads the nearest .gitignore at or above root, stopping at
// the repository root (a directory holding .git). It returns nil when
// gitignore handling is off or no file is found.
func (s *Scanner) ignoreMatcher(root string) gitignore.IgnoreMatcher {
	if !s.settings.RespectGitignore {
		return nil
	}

	dir := root
	for {
		path := filepath.Join(dir, ".gitignore")
		if text, err := s.src.ReadText(path); err == nil {
			return gitignore.NewGitIgnoreFromReader(dir, strings.NewReader(text))
		}

		if ok, _ := s.src.Exists(filepath.Join(dir, ".git")); ok {
			return nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// validatePath cleans path and makes it absolute.
func validatePath(path string) (string, error) {
	if path == "" || strings.ContainsRune(path, 0) {
		return "", berrors.ErrInvalidPath(path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", berrors.WrapValidation(err, berrors.ErrCodeInvalidPath,
			fmt.Sprintf("resolving %s", path))
	}
	return absPath, nil
}
