// Package watcher monitors a directory for new documents and dispatches them
// to a handler with bounded concurrency. It backs the watch command, which
// replaces the original interactive file-picker flow for batch use.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler processes one newly created document.
type Handler func(ctx context.Context, path string) error

type Watcher struct {
	dir           string
	extensions    map[string]bool
	handler       Handler
	log           *zap.Logger
	fswatcher     *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup

	// settleDelay gives the producing process time to finish writing the
	// file before extraction starts.
	settleDelay time.Duration
}

// New creates a watcher over dir that invokes handler for files whose
// extension is in extensions (e.g. ".pdf"). maxConcurrent <= 0 defaults to 2.
func New(dir string, extensions []string, handler Handler, log *zap.Logger, maxConcurrent int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	if log == nil {
		log = zap.NewNop()
	}

	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = true
	}

	return &Watcher{
		dir:           dir,
		extensions:    extSet,
		handler:       handler,
		log:           log,
		fswatcher:     fsw,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		settleDelay:   500 * time.Millisecond,
	}, nil
}

// Start blocks processing events until ctx is cancelled. In-flight handlers
// are waited for before returning.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info("watching for documents",
		zap.String("dir", w.dir), zap.Int("max_concurrent", w.maxConcurrent))

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.fswatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !w.isDocument(event.Name) {
				w.log.Debug("ignoring file", zap.String("path", event.Name))
				continue
			}

			w.log.Info("new document detected", zap.String("path", event.Name))
			time.Sleep(w.settleDelay)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, path); err != nil {
						w.log.Error("failed to process document",
							zap.String("path", path), zap.Error(err))
					}
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.fswatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error("watcher error", zap.Error(err))
		}
	}
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	return w.fswatcher.Close()
}

func (w *Watcher) isDocument(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}
