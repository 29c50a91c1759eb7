package dispatcher

import (
	"context"
	"log"

	"github.com/capcom6/hup-on-change/internal/watcher"
)

type Registry interface {
	AddWatch(path string, recursive bool) error
}

type Filter interface {
	Match(name string) bool
}

type ChangeHandler interface {
	OnChange(ctx context.Context, event watcher.Event) error
}

// Dispatcher routes watcher events: new directories go to the registry,
// matching file changes go to the change handler. It is not safe for
// concurrent use; events must be dispatched in arrival order.
type Dispatcher struct {
	registry Registry
	filter   Filter
	handler  ChangeHandler
	logger   *log.Logger
}

func New(registry Registry, filter Filter, handler ChangeHandler, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		filter:   filter,
		handler:  handler,
		logger:   logger,
	}
}

// Dispatch returns only the errors of the change handler.
func (d *Dispatcher) Dispatch(ctx context.Context, event watcher.Event) error {
	switch event.Kind {
	case watcher.EventCreate:
		if event.IsDir {
			if err := d.registry.AddWatch(event.Path, false); err != nil {
				d.logger.Printf("[INFO] %s", err)
			}
			return nil
		}
	case watcher.EventModify:
	default:
		d.logger.Printf("[DEBUG] ignore %s: %s", event.Kind, event.Path)
		return nil
	}

	if !d.filter.Match(event.Name) {
		return nil
	}

	d.logger.Printf("[DEBUG] change: %s %s", event.Path, event.Kind)

	return d.handler.OnChange(ctx, event)
}
