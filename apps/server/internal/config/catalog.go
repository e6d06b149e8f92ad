package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"negotiator-lite/negotiation/suspect"
)

const reloadDebounce = 250 * time.Millisecond

// LoadRegistry returns the built-in catalog when path is empty.
func LoadRegistry(path string) (*suspect.Registry, error) {
	if path == "" {
		return suspect.DefaultRegistry(), nil
	}
	reg := suspect.NewRegistry()
	if err := reg.LoadFromFile(path); err != nil {
		return nil, fmt.Errorf("load scenario catalog %s: %w", path, err)
	}
	return reg, nil
}

// WatchCatalog reloads reg whenever the catalog file changes. A reload that
// fails keeps the previous catalog. It returns once the watch is installed;
// the watch ends with ctx.
func WatchCatalog(ctx context.Context, path string, reg *suspect.Registry) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(reloadDebounce)
				fire = timer.C
			case <-fire:
				fire = nil
				if err := reg.Replace(path); err != nil {
					log.Printf("[Config] Catalog reload failed, keeping %d scenarios: %v", reg.Count(), err)
					continue
				}
				log.Printf("[Config] Catalog reloaded: %d scenarios", reg.Count())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[Config] Catalog watcher error: %v", err)
			}
		}
	}()
	return nil
}
