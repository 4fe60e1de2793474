package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher wraps an fsnotify watcher with the state watch mode needs:
// exclusion paths and a debounce timer shared across events.
type FileWatcher struct {
	Watcher       *fsnotify.Watcher
	RootDir       string
	ExcludePaths  []string
	DebounceTimer *time.Timer
	Mutex         sync.Mutex
	OnChange      func(path string) error
}

func NewFileWatcher(rootDir string, excludePaths []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		Watcher:      watcher,
		RootDir:      rootDir,
		ExcludePaths: append([]string{".git"}, excludePaths...),
		OnChange:     func(string) error { return fmt.Errorf("OnChange not set") },
	}, nil
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func(path string) error) {
	fw.OnChange = onChange
}
