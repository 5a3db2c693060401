package guide

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 300 * time.Millisecond

// WatchContent invalidates the content cache whenever a file under dir
// changes. Bursts of events collapse into one reload. The returned function
// stops watching.
func (a *App) WatchContent(dir string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		a.Cache.Invalidate()
		if _, err := a.Cache.Site(); err != nil {
			a.Logger().Errorf("content reload failed: %v", err)
			return
		}
		if err := a.Cache.LastError(); err != nil {
			a.Logger().Errorf("content reload failed, serving previous version: %v", err)
			return
		}
		a.Logger().Infof("content reloaded from %s", dir)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if ev.Has(fsnotify.Create) && isDir(ev.Name) {
					if err := watcher.Add(ev.Name); err != nil {
						a.Logger().Warnf("watch %s: %v", ev.Name, err)
					}
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, reload)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.Logger().Warnf("watcher: %v", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			watcher.Close()
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		})
	}, nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
