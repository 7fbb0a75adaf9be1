package mcp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long the watcher waits after the last write
// before reloading. Editors often emit several events per save.
const reloadDebounce = 500 * time.Millisecond

// Reloader watches the schema file and hot-reloads it on change. A file
// that no longer parses is rejected and the prior valid schema stays
// active.
type Reloader struct {
	watcher *fsnotify.Watcher
	server  *Server
	path    string
}

// NewReloader starts watching the schema file. Returns (nil, nil) when
// there is no file to watch (empty path or built-in defaults in use).
func NewReloader(server *Server, path string) (*Reloader, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("schema file not watchable: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}

	return &Reloader{watcher: watcher, server: server, path: path}, nil
}

// Run processes watch events until ctx is cancelled, debouncing bursts
// of writes into a single reload.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	debounce := time.NewTimer(reloadDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil

		case <-debounce.C:
			armed = false
			if err := r.server.ReloadSchema(); err != nil {
				fmt.Fprintf(os.Stderr, "hot-reload failed, keeping previous schema: %v\n", err)
				continue
			}
			fmt.Fprintf(os.Stderr, "hot-reload: schema %s reloaded\n", r.path)

		case ev, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if armed && !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(reloadDebounce)
			armed = true

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "schema watcher error: %v\n", err)
		}
	}
}
