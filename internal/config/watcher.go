package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the configuration file and invokes a callback with the
// freshly loaded configuration after a debounce window. Changes that fail to
// load or validate are logged and ignored; the previous configuration stays
// in effect.
type Watcher struct {
	configPath   string
	onReload     func(*Config)
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	reloadChan   chan struct{}
	debounceTime time.Duration
	log          *slog.Logger
}

// NewWatcher creates a configuration file watcher.
func NewWatcher(configPath string, onReload func(*Config), log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	return &Watcher{
		configPath:   absPath,
		onReload:     onReload,
		watcher:      w,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: 2 * time.Second,
		log:          log,
	}, nil
}

// Start begins monitoring. Watching the directory rather than the file
// survives editors that replace the file on save.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.configPath)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.log.Info("starting configuration watcher", "config_path", w.configPath)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	configFile := filepath.Base(w.configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write,
				event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				w.triggerReload()
			case event.Op&fsnotify.Remove == fsnotify.Remove:
				w.log.Warn("config file removed", "file", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	var reloadTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			return
		case <-w.stopChan:
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			return
		case <-w.reloadChan:
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(w.debounceTime, w.performReload)
		}
	}
}

func (w *Watcher) triggerReload() {
	select {
	case w.reloadChan <- struct{}{}:
	default: // reload already pending
	}
}

func (w *Watcher) performReload() {
	w.log.Info("reloading configuration", "config_path", w.configPath)

	cfg, err := Load(w.configPath)
	if err != nil {
		w.log.Error("failed to reload configuration", "error", err)
		return
	}
	w.onReload(cfg)
	w.log.Info("configuration reloaded")
}
