package sqlite

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Changes signals whenever the database file or its WAL is written by another
// process. The channel is closed when ctx is done. In-memory databases never
// signal.
func (c *Client) Changes(ctx context.Context, log logrus.FieldLogger) (<-chan struct{}, error) {
	out := make(chan struct{}, 1)
	if c.path == "" {
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	// SQLite replaces the -wal and -shm files, so watch the directory.
	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	watched := map[string]struct{}{
		filepath.Clean(c.path):          {},
		filepath.Clean(c.path + "-wal"): {},
	}

	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if _, ok := watched[filepath.Clean(event.Name)]; !ok {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if log != nil {
					log.WithError(err).Warn("database file watcher error")
				}
			}
		}
	}()

	return out, nil
}
