package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/discovery"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/models"
)

const debounceDelay = 500 * time.Millisecond

// FileWatcherImpl watches the project tree and regenerates scaffolding for
// source files as they change. Events are debounced so editor save bursts
// trigger a single regeneration.
type FileWatcherImpl struct {
	FileWatcher *models.FileWatcher
	cfg         *config.Config

	// pending accumulates changed source paths between debounce firings.
	pending map[string]bool
}

func NewFileWatcher(rootDir string, cfg *config.Config) (*FileWatcherImpl, error) {
	excludes := append([]string{cfg.TestRoot}, cfg.ExcludeDirs...)
	fw, err := models.NewFileWatcher(rootDir, excludes)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &FileWatcherImpl{
		FileWatcher: fw,
		cfg:         cfg,
		pending:     map[string]bool{},
	}, nil
}

// AddOnChangeFunc sets the callback invoked once per changed source file
// after the debounce window closes.
func (fw *FileWatcherImpl) AddOnChangeFunc(onChange func(path string) error) {
	fw.FileWatcher.AddOnChangeFunc(onChange)
}

func (fw *FileWatcherImpl) Watch() error {
	if err := fw.addWatchersRecursively(fw.FileWatcher.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	logger.Info("Watching %s for changes (Ctrl+C to stop)", fw.FileWatcher.RootDir)

	for {
		select {
		case event, ok := <-fw.FileWatcher.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if fw.shouldExcludePath(event.Name) {
				continue
			}

			logger.Debug("File event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					logger.Debug("Adding watcher for new directory: %s", event.Name)
					fw.FileWatcher.Watcher.Add(event.Name)
					continue
				}
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !discovery.IsSourceFile(event.Name, fw.FileWatcher.RootDir, fw.cfg) {
				continue
			}

			fw.debounceRegenerate(event.Name)

		case err, ok := <-fw.FileWatcher.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcherImpl) debounceRegenerate(path string) {
	fw.FileWatcher.Mutex.Lock()
	defer fw.FileWatcher.Mutex.Unlock()

	fw.pending[path] = true

	if fw.FileWatcher.DebounceTimer != nil {
		fw.FileWatcher.DebounceTimer.Stop()
	}

	fw.FileWatcher.DebounceTimer = time.AfterFunc(debounceDelay, func() {
		fw.FileWatcher.Mutex.Lock()
		changed := make([]string, 0, len(fw.pending))
		for p := range fw.pending {
			changed = append(changed, p)
		}
		fw.pending = map[string]bool{}
		fw.FileWatcher.Mutex.Unlock()

		sort.Strings(changed)
		for _, p := range changed {
			logger.Debug("Change detected, regenerating: %s", p)
			if err := fw.FileWatcher.OnChange(p); err != nil {
				logger.Error("Regeneration failed for %s: %v", p, err)
			}
		}
	})
}

func (fw *FileWatcherImpl) Close() error {
	fw.FileWatcher.Mutex.Lock()
	defer fw.FileWatcher.Mutex.Unlock()

	if fw.FileWatcher.DebounceTimer != nil {
		fw.FileWatcher.DebounceTimer.Stop()
	}
	return fw.FileWatcher.Watcher.Close()
}

func (fw *FileWatcherImpl) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.FileWatcher.RootDir, path)
	if err != nil {
		return false
	}
	relPath = filepath.Clean(relPath)

	for _, part := range strings.Split(relPath, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}

	for _, excludePath := range fw.FileWatcher.ExcludePaths {
		excludePath = filepath.Clean(excludePath)
		if relPath == excludePath {
			return true
		}
		if strings.HasPrefix(relPath, excludePath+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (fw *FileWatcherImpl) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && fw.shouldExcludePath(path) {
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
