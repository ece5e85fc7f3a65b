package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/pipe-analyzer/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeNetwork ChangeType = iota // pipe table CSV
	ChangeTypeConfig                    // TOML configuration
)

func (c ChangeType) String() string {
	switch c {
	case ChangeTypeNetwork:
		return "network"
	case ChangeTypeConfig:
		return "config"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(c))
	}
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches the input files of an analysis. Parent directories
// are watched rather than the files themselves so editors that replace a
// file on save are still seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]ChangeType // cleaned absolute path -> type
	events  chan ChangeEvent
	once    sync.Once
}

// NewFileWatcher creates a watcher for the pipe table and, when configPath
// is not empty, the configuration file.
func NewFileWatcher(inputPath, configPath string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: w,
		files:   make(map[string]ChangeType),
		events:  make(chan ChangeEvent, 100),
	}

	if err := fw.track(inputPath, ChangeTypeNetwork); err != nil {
		_ = w.Close()
		return nil, err
	}
	if configPath != "" {
		if err := fw.track(configPath, ChangeTypeConfig); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	return fw, nil
}

func (fw *FileWatcher) track(path string, kind ChangeType) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fw.files[abs] = kind
	return nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for path := range fw.files {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logging.Info("Started watching input files", "files", len(fw.files), "directories", len(dirs))

	go fw.processEvents(ctx)

	return nil
}

// processEvents forwards relevant fsnotify events. Batching is left to
// the Debouncer.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer func() { _ = fw.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}

			kind, tracked := fw.files[filepath.Clean(event.Name)]
			if !tracked {
				continue
			}

			logging.Trace("File changed", "path", event.Name, "op", event.Op.String(), "type", kind.String())
			select {
			case fw.events <- ChangeEvent{Type: kind, Paths: []string{event.Name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	var err error
	fw.once.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
