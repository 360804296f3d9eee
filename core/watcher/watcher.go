package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/routefix/core/logger"
	"github.com/tristendillon/routefix/core/models"
	"github.com/tristendillon/routefix/core/walker"
)

type FileWatcherImpl struct {
	FileWatcher *models.FileWatcher
}

func NewFileWatcher(rootDir string, exclude walker.ExclusionSet) (*FileWatcherImpl, error) {
	fw, err := models.NewFileWatcher(rootDir, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &FileWatcherImpl{
		FileWatcher: fw,
	}, nil
}

// Watch blocks until ctx is done. Events are handled on this goroutine and
// OnChange runs here too once no event has arrived for the debounce period,
// so reruns never overlap.
func (fw *FileWatcherImpl) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.FileWatcher.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	if err := fw.FileWatcher.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	debounce := time.NewTimer(fw.FileWatcher.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.FileWatcher.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if fw.shouldExcludePath(event.Name) {
				continue
			}

			logger.Debug("File event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				fw.FileWatcher.OnInvalidate(event.Name)
			}

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					if err := fw.addWatchersRecursively(event.Name); err != nil {
						logger.Error("%v", err)
					}
				}
			}

			debounce.Reset(fw.FileWatcher.Debounce)

		case <-debounce.C:
			logger.Debug("File changes detected, rescanning...")
			if err := fw.FileWatcher.OnChange(); err != nil {
				logger.Error("Watcher.OnChange failed: %v", err)
			}

		case err, ok := <-fw.FileWatcher.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcherImpl) Close() error {
	if err := fw.FileWatcher.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}

	return fw.FileWatcher.Watcher.Close()
}

// shouldExcludePath reports whether any directory between the root and path
// is in the exclusion set.
func (fw *FileWatcherImpl) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.FileWatcher.RootDir, path)
	if err != nil || relPath == "." {
		return false
	}

	for _, part := range strings.Split(filepath.Clean(relPath), string(filepath.Separator)) {
		if _, ok := fw.FileWatcher.Exclude[part]; ok {
			return true
		}
	}
	return false
}

func (fw *FileWatcherImpl) addWatchersRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.FileWatcher.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}

		return nil
	})
}
