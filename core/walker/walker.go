package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tristendillon/routefix/core/logger"
)

// ExclusionSet holds directory names that are never descended into, at any
// depth below the walk root.
type ExclusionSet map[string]struct{}

func NewExclusionSet(names ...string) ExclusionSet {
	set := make(ExclusionSet, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

func (s ExclusionSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// FileFilter decides from a file's base name whether it is visited.
type FileFilter func(name string) bool

// HasExtension matches names ending in one of exts. Dots are optional.
func HasExtension(exts ...string) FileFilter {
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return HasSuffix(normalized...)
}

// HasSuffix matches names ending in one of suffixes, e.g. "route.ts".
func HasSuffix(suffixes ...string) FileFilter {
	return func(name string) bool {
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				return true
			}
		}
		return false
	}
}

type Walker struct {
	Exclude ExclusionSet
	Match   FileFilter
	// OnError receives traversal errors. When nil they are logged and the
	// walk carries on.
	OnError func(path string, err error)
}

func NewWalker(exclude ExclusionSet, match FileFilter) *Walker {
	if exclude == nil {
		exclude = ExclusionSet{}
	}
	return &Walker{Exclude: exclude, Match: match}
}

// Walk visits matching regular files (and links to them) under root in lexical order. An error
// returned by visit stops the walk and is returned as is.
func (w *Walker) Walk(root string, visit func(path string) error) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.reportError(path, err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && w.Exclude.Contains(d.Name()) {
				logger.Debug("Excluding directory: %s", path)
				return filepath.SkipDir
			}
			return nil
		}

		if w.Match != nil && !w.Match(d.Name()) {
			return nil
		}
		if !w.isFile(path, d) {
			return nil
		}

		if err := visit(path); err != nil {
			return &visitError{err: err}
		}
		return nil
	})

	var ve *visitError
	if errors.As(err, &ve) {
		return ve.err
	}
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return nil
}

// isFile accepts regular files and symlinks whose target is a regular file.
// Symlinked directories are never entered.
func (w *Walker) isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		w.reportError(path, err)
		return false
	}
	return info.Mode().IsRegular()
}

func (w *Walker) reportError(path string, err error) {
	if w.OnError != nil {
		w.OnError(path, err)
		return
	}
	logger.Error("Error reading %s: %v", path, err)
}

type visitError struct {
	err error
}

func (e *visitError) Error() string {
	return e.err.Error()
}

func (e *visitError) Unwrap() error {
	return e.err
}
