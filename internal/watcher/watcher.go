package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

// Watcher keeps the set of watched directories and turns fsnotify
// notifications into Events. Directories are only ever added.
type Watcher struct {
	Roots []string

	logger    *log.Logger
	fswatcher *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]struct{}
	events  chan Event
}

func New(roots []string, logger *log.Logger) (*Watcher, error) {
	fswatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("can't create watcher: %w", err)
	}

	return &Watcher{
		Roots: roots,

		logger:    logger,
		fswatcher: fswatcher,

		watched: make(map[string]struct{}),
	}, nil
}

// Watch registers the roots recursively and streams events until ctx is done.
// The channel is closed afterwards.
func (w *Watcher) Watch(ctx context.Context, wg *sync.WaitGroup) (EventsChannel, error) {
	if w.events != nil {
		return w.events, nil
	}

	for _, root := range w.Roots {
		if err := w.AddWatch(root, true); err != nil {
			w.logger.Printf("[ERROR] %s", err)
		}
	}

	if len(w.Paths()) == 0 {
		w.fswatcher.Close()
		return nil, ErrNoWatchPaths
	}

	w.events = make(chan Event)

	wg.Add(1)
	go func() {
		defer func() {
			w.fswatcher.Close()
			close(w.events)
			wg.Done()
		}()

		for {
			select {
			case source, ok := <-w.fswatcher.Events:
				if !ok {
					return
				}

				event, ok := translate(source)
				if !ok {
					continue
				}

				select {
				case w.events <- event:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.fswatcher.Errors:
				if !ok {
					return
				}
				w.logger.Printf("[ERROR] watcher: %s", err)

			case <-ctx.Done():
				return
			}
		}
	}()

	return w.events, nil
}

// AddWatch starts watching path. With recursive set, the directories already
// below path are watched too; the ones that vanish meanwhile are skipped.
func (w *Watcher) AddWatch(path string, recursive bool) error {
	if err := w.add(path); err != nil {
		return err
	}

	if !recursive {
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("can't list directory %s: %w", path, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		subdir := filepath.Join(path, entry.Name())
		if err := w.AddWatch(subdir, true); err != nil {
			w.logger.Printf("[INFO] skip %s: %s", subdir, err)
		}
	}

	return nil
}

// Paths returns the watched directories in lexical order.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := lo.Keys(w.watched)
	sort.Strings(paths)

	return paths
}

func (w *Watcher) add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watched[path]; ok {
		return nil
	}

	if err := w.fswatcher.Add(path); err != nil {
		return fmt.Errorf("can't watch %s: %w", path, err)
	}
	w.watched[path] = struct{}{}

	w.logger.Printf("[DEBUG] watch: %s", path)

	return nil
}

func translate(source fsnotify.Event) (Event, bool) {
	if source.Name == "" || source.Name == "." {
		return Event{}, false
	}

	var kind EventKind
	switch {
	case source.Has(fsnotify.Create):
		kind = EventCreate
	case source.Has(fsnotify.Write):
		kind = EventModify
	default:
		return Event{}, false
	}

	// a target that is already gone is handled as a file
	isDir := false
	if info, err := os.Stat(source.Name); err == nil {
		isDir = info.IsDir()
	}

	return Event{
		Kind:  kind,
		Path:  source.Name,
		Name:  filepath.Base(source.Name),
		IsDir: isDir,
	}, true
}
