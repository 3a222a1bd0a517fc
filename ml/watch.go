package ml

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifacts warns when a fitted artifact changes on disk after
// startup. The registry is never reloaded in-process; a changed artifact
// means the operator must restart the service to pick it up.
func WatchArtifacts(paths []string, logger *zap.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					logger.Warn("fitted artifact changed on disk, restart required to reload",
						zap.String("path", event.Name),
						zap.String("op", event.Op.String()))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("artifact watcher error", zap.Error(err))
			}
		}
	}()

	return watcher, nil
}
