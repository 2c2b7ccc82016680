package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/logger"
)

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	// C receives each successfully reloaded config. Only the newest
	// pending config is kept.
	C <-chan *Config

	path    string
	c       chan *Config
	watcher *fsnotify.Watcher
	done    chan struct{}
	log     *zap.Logger
}

// Watch starts watching path. Reloaded files go through the same
// defaults < file < flags layering and validation as Load; invalid files
// are logged and skipped.
func Watch(path string, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Editors often replace files instead of writing them, so watch the
	// directory and filter by name.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	c := make(chan *Config, 1)
	w := &Watcher{
		C:       c,
		path:    filepath.Clean(path),
		c:       c,
		watcher: fw,
		done:    make(chan struct{}),
		log:     logger.Or(log, "config"),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := loadPath(w.path)
	if err != nil {
		w.log.Warn("config reload failed, keeping previous settings", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.log.Info("config reloaded", zap.String("path", w.path))

	// Replace any config the render loop has not picked up yet.
	select {
	case <-w.c:
	default:
	}
	w.c <- cfg
}

// Close stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
