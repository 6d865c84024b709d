// Package watcher re-runs the pipeline when watched source files
// change. Events are debounced so a burst of writes produces one
// callback with the accumulated file set.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// FileWatcher watches directories recursively for source changes.
type FileWatcher struct {
	watcher      *fsnotify.Watcher
	extensions   map[string]bool
	debounceTime time.Duration
	callback     func(files []string)

	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex

	cancel   context.CancelFunc
	stopOnce sync.Once
	doneCh   chan struct{}
}

// NewFileWatcher creates a watcher over dirs, monitoring the given file
// extensions (e.g. ".cpp", ".h").
func NewFileWatcher(dirs []string, extensions []string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[ext] = true
	}

	fw := &FileWatcher{
		watcher:      w,
		extensions:   extMap,
		debounceTime: defaultDebounce,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := fw.addRecursively(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return fw, nil
}

// Start begins watching; callback receives the changed files after each
// quiet period.
func (fw *FileWatcher) Start(ctx context.Context, callback func(files []string)) {
	fw.callback = callback
	ctx, fw.cancel = context.WithCancel(ctx)
	go fw.watch(ctx)
}

// Stop stops the watcher. It is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) addRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return fw.watcher.Add(path)
	})
}

func (fw *FileWatcher) watch(ctx context.Context) {
	defer close(fw.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories join the watch set.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = fw.addRecursively(event.Name)
			return
		}
	}

	if !fw.extensions[filepath.Ext(event.Name)] {
		return
	}

	fw.accumulatedMu.Lock()
	fw.accumulated[event.Name] = true
	fw.accumulatedMu.Unlock()

	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceTime, fw.fire)
}

func (fw *FileWatcher) fire() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	if fw.callback != nil {
		fw.callback(files)
	}
}
