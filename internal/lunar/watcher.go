package lunar

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vdhoang/botui/internal/models"
)

// EventsCallback receives the freshly parsed events after the watched
// file changes.
type EventsCallback func([]models.LunarEvent)

// Watch monitors a local lunar-events text file and re-parses it whenever it
// changes, calling cb with the result. It watches the parent directory rather
// than the file itself because editors typically replace files via rename,
// which would otherwise silently drop the watch.
//
// Runs until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, cb EventsCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("lunar watcher: started", slog.String("file", abs))

	// Debounce bursts of write events from a single save.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("lunar watcher: stopped")
			return nil

		case <-reloadCh:
			data, err := os.ReadFile(abs)
			if err != nil {
				logger.Warn("lunar watcher: read failed", slog.String("error", err.Error()))
				continue
			}
			events := ParseEvents(string(data), time.Now())
			logger.Debug("lunar watcher: reloaded", slog.Int("events", len(events)))
			if cb != nil {
				cb(events)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("lunar watcher: error", slog.String("error", err.Error()))
		}
	}
}
