// Package watch re-emits declarations when a metadata document changes on
// disk, and serves the latest surface to browsers for live preview.
package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long the watcher waits for a burst of writes to settle
const DefaultDelay = 100 * time.Millisecond

// FileWatcher monitors a fixed set of files and reports settled changes.
// Directories are watched rather than files so that editors which save by
// renaming a temporary file are still observed.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	files     map[string]struct{}
	logger    *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher for files. onChange runs on the debouncer
// goroutine, one call at a time.
func NewFileWatcher(files []string, delay time.Duration, logger *zap.Logger, onChange func([]string) error) (*FileWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:  watcher,
		files:    make(map[string]struct{}, len(files)),
		logger:   logger,
		stopChan: make(chan struct{}),
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		fw.files[abs] = struct{}{}
	}

	fw.debouncer = NewDebouncer(delay, func(changed []string) {
		if err := onChange(changed); err != nil {
			fw.logger.Error("error handling file changes", zap.Error(err))
		}
	})

	return fw, nil
}

// Start begins watching the directories holding the files
func (fw *FileWatcher) Start() error {
	dirs := make(map[string]struct{})
	for f := range fw.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}

	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.logger.Debug("watching directory", zap.String("dir", dir))
	}

	fw.wg.Add(1)
	go fw.watch()

	return nil
}

// Stop stops the watcher and discards pending changes. It is safe to call twice.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.wg.Wait()
		fw.debouncer.Stop()
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if !fw.isWatched(event.Name) {
				continue
			}
			fw.logger.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			fw.debouncer.Add(event.Name)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) isWatched(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, ok := fw.files[abs]
	return ok
}

// Debouncer collects names and hands them to a callback, sorted, once no new
// name has arrived for the configured delay
type Debouncer struct {
	delay    time.Duration
	callback func([]string)
	running  sync.Mutex

	mutex   sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool
}

// NewDebouncer creates a debouncer
func NewDebouncer(delay time.Duration, callback func([]string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]struct{}),
	}
}

// Add records name and restarts the delay
func (d *Debouncer) Add(name string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	d.pending[name] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mutex.Unlock()
		return
	}
	names := make([]string, 0, len(d.pending))
	for name := range d.pending {
		names = append(names, name)
	}
	d.pending = make(map[string]struct{})
	d.mutex.Unlock()

	sort.Strings(names)
	if d.callback != nil {
		d.running.Lock()
		defer d.running.Unlock()
		d.callback(names)
	}
}

// Stop cancels any pending flush
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
