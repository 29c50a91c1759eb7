package reloader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/capcom6/hup-on-change/internal/locator"
	"github.com/capcom6/hup-on-change/internal/watcher"
)

const MinWait = 20 * time.Millisecond

type Locator interface {
	Resolve() (int, error)
}

type Signaler interface {
	Hangup(pid int) error
}

// Reloader turns a burst of changes into a single SIGHUP sent once no change
// has been seen for the wait interval.
type Reloader struct {
	Locator  Locator
	Signaler Signaler
	Wait     time.Duration

	logger *log.Logger

	mu    sync.Mutex
	timer *time.Timer
	// generation of the pending signal; a fire with a stale value is a no-op
	generation uint64
}

func New(locator Locator, signaler Signaler, wait time.Duration, logger *log.Logger) *Reloader {
	return &Reloader{
		Locator:  locator,
		Signaler: signaler,
		Wait:     max(wait, MinWait),

		logger: logger,
	}
}

func (r *Reloader) OnChange(_ context.Context, event watcher.Event) error {
	pid, err := r.Locator.Resolve()
	if errors.Is(err, locator.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("can't resolve master process: %w", err)
	}

	r.schedule(pid)
	r.logger.Printf("[DEBUG] HUP %d scheduled in %s after %s", pid, r.Wait, event.Path)

	return nil
}

// Stop cancels the pending signal, if any.
func (r *Reloader) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()
}

func (r *Reloader) schedule(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()

	generation := r.generation
	r.timer = time.AfterFunc(r.Wait, func() {
		r.fire(generation, pid)
	})
}

// cancel must be called with mu held.
func (r *Reloader) cancel() {
	r.generation++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Reloader) fire(generation uint64, pid int) {
	r.mu.Lock()
	if generation != r.generation {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.mu.Unlock()

	r.logger.Printf("[INFO] HUP: %d", pid)
	if err := r.Signaler.Hangup(pid); err != nil {
		r.logger.Printf("[ERROR] %s", err)
	}
}
