// Package monitoring watches the artifact files and counts pipeline runs.
package monitoring

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactChange is a filesystem event on a watched artifact.
type ArtifactChange struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Op   string `json:"op"`
}

// ArtifactWatcher reports edits to the artifact files a process has loaded.
// Models are never reloaded; a change only means the running process now
// serves a copy that differs from the file on disk.
type ArtifactWatcher struct {
	watcher  *fsnotify.Watcher
	paths    map[string]string
	logger   *zap.Logger
	onChange func(ArtifactChange)

	mu      sync.Mutex
	changed map[string]bool
	closed  bool
}

// NewArtifactWatcher watches the parent directories of files, keyed by
// artifact name. Directories are watched instead of the files so that
// editors which replace a file by rename are still seen.
func NewArtifactWatcher(files map[string]string, logger *zap.Logger) (*ArtifactWatcher, error) {
	if len(files) == 0 {
		return nil, errors.New("artifact watcher: no files to watch")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &ArtifactWatcher{
		watcher: fw,
		paths:   make(map[string]string, len(files)),
		logger:  logger,
		changed: make(map[string]bool),
	}

	dirs := make(map[string]bool)
	for name, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.paths[abs] = name
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// OnChange registers a hook called for every artifact change. It must be set
// before Start.
func (w *ArtifactWatcher) OnChange(fn func(ArtifactChange)) {
	w.onChange = fn
}

// Start consumes events until ctx is done or the watcher is closed.
func (w *ArtifactWatcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ArtifactWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("artifact watcher error", zap.Error(err))
		}
	}
}

func (w *ArtifactWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	name, ok := w.paths[abs]
	if !ok {
		return
	}

	w.mu.Lock()
	w.changed[name] = true
	w.mu.Unlock()

	change := ArtifactChange{Name: name, Path: abs, Op: event.Op.String()}
	w.logger.Warn("artifact changed on disk; still serving the copy loaded at startup",
		zap.String("artifact", name),
		zap.String("path", abs),
		zap.String("op", change.Op))
	if w.onChange != nil {
		w.onChange(change)
	}
}

// Changed lists the artifacts that changed since startup.
func (w *ArtifactWatcher) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.changed))
	for name := range w.changed {
		names = append(names, name)
	}
	return names
}

func (w *ArtifactWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.watcher.Close()
}
