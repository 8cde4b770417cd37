package inbox

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before it is imported.
const DefaultSettle = 500 * time.Millisecond

// ResultFunc receives the outcome of each file the watcher imports.
type ResultFunc func(res Result, err error)

// Watch imports pending files, then imports every CSV created or written in
// the directory until ctx is cancelled. Files are imported one at a time
// after they have been quiet for settle.
func (p *Processor) Watch(ctx context.Context, settle time.Duration, onResult ResultFunc) error {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if onResult == nil {
		onResult = func(Result, error) {}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(p.dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	results, err := p.ProcessDir(ctx)
	for _, res := range results {
		onResult(res, nil)
	}
	if err != nil && ctx.Err() == nil {
		onResult(Result{}, err)
	}

	ready := make(chan string, 16)
	var (
		mu     sync.Mutex
		timers = map[string]*time.Timer{}
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if filepath.Dir(event.Name) != filepath.Clean(p.dir) || !isPending(name) {
				continue
			}

			mu.Lock()
			if t, exists := timers[name]; exists {
				t.Stop()
			}
			timers[name] = time.AfterFunc(settle, func() {
				mu.Lock()
				delete(timers, name)
				mu.Unlock()
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})
			mu.Unlock()

		case name := <-ready:
			res, err := p.ProcessFile(ctx, name)
			onResult(res, err)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watcher error", "error", err)
		}
	}
}
