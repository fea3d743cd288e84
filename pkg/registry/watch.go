package registry

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Watch feeds filesystem events from the given directories into the
// rescanner until the context is canceled. Only paths ending in suffix
// are considered; everything else in a watched directory is noise. It
// covers setups where the client does not support workspace file
// watching; when it does, the protocol layer calls the rescanner
// directly instead.
func Watch(ctx context.Context, dirs []string, suffix string, rescanner *Rescanner) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, errors.Errorf("watching %s: %w", dir, err)
		}
	}

	go func() {
		logger := zerolog.Ctx(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, suffix) {
					continue
				}
				switch {
				case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
					rescanner.Remove(ctx, event.Name)
				case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
					rescanner.Enqueue(ctx, event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("watcher error")
			}
		}
	}()

	return watcher.Close, nil
}
