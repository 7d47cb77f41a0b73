package specgen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a watcher waits after a write before
// regenerating, so that bursts of writes count as one change.
const DefaultDebounce = 100 * time.Millisecond

var ErrAlreadyWatching = errors.New("already watching")

// Watcher regenerates output for typed AST files whenever they are written.
type Watcher struct {
	engine   SpecEngine
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	paths    []string
	debounce time.Duration
	watching bool
}

func NewWatcher(engine SpecEngine, logger *zap.Logger, paths ...string) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		engine:   engine,
		logger:   logger,
		watcher:  w,
		paths:    paths,
		debounce: DefaultDebounce,
	}, nil
}

func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

func (w *Watcher) add() error {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("error adding file to watcher: %w", err)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return nil
}

// Watch calls handle with fresh output for every written input file until
// ctx is done. Generation failures are logged and do not stop the watch.
func (w *Watcher) Watch(ctx context.Context, handle func(Output)) error {
	if w.watching {
		return ErrAlreadyWatching
	}
	w.watching = true
	defer w.watcher.Close()

	if err := w.add(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event, handle)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event, handle func(Output)) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !hasDesiredExtension(event.Name) {
		return
	}
	select {
	case <-ctx.Done():
		return
	case <-time.After(w.debounce):
	}

	w.logger.Debug("Regenerating", zap.String("file", event.Name))
	out, err := w.engine.Run(event.Name)
	if err != nil {
		w.logger.Error("Error processing file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	handle(out)
}
