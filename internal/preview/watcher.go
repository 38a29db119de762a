package preview

import (
	"context"
	"path/filepath"
	"time"

	"pi-builder/internal/common/logger"

	"github.com/fsnotify/fsnotify"
)

// configWatcher calls onChange once writes to a single file have been quiet
// for the debounce period. It watches the parent directory so editors that
// save by rename are still seen.
type configWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()
	logger   logger.Logger
}

func newConfigWatcher(path string, debounce time.Duration, onChange func(), log logger.Logger) (*configWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &configWatcher{
		watcher:  w,
		path:     path,
		debounce: debounce,
		onChange: onChange,
		logger:   log,
	}, nil
}

// run blocks until ctx ends, then closes the underlying watcher.
func (cw *configWatcher) run(ctx context.Context) {
	defer cw.watcher.Close()
	cw.logger.Debug("watching config", map[string]interface{}{"path": cw.path})

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(cw.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			cw.onChange()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("config watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}
