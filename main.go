package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/capcom6/hup-on-change/internal/config"
	"github.com/capcom6/hup-on-change/internal/dispatcher"
	"github.com/capcom6/hup-on-change/internal/filter"
	"github.com/capcom6/hup-on-change/internal/locator"
	"github.com/capcom6/hup-on-change/internal/logging"
	"github.com/capcom6/hup-on-change/internal/process"
	"github.com/capcom6/hup-on-change/internal/reloader"
	"github.com/capcom6/hup-on-change/internal/watcher"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if errors.Is(err, config.ErrHelpShown) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.New(logging.Level(cfg.Verbose, cfg.Quiet), os.Stderr)
	logger.Printf("[DEBUG] version %s", config.Version())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		cancel()
		logger.Printf("[ERROR] %s", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pathFilter, err := filter.New(cfg.Includes)
	if err != nil {
		return err
	}

	signaler := process.New()
	master := locator.New(locator.Config{
		PidFile:  cfg.PidFile,
		AppName:  cfg.AppName,
		ProcRoot: cfg.ProcRoot,
	}, signaler, logger)

	hup := reloader.New(master, signaler, cfg.Wait, logger)
	defer hup.Stop()

	watch, err := watcher.New(cfg.WatchPaths, logger)
	if err != nil {
		return err
	}

	wg := &sync.WaitGroup{}
	defer wg.Wait()

	ch, err := watch.Watch(ctx, wg)
	if err != nil {
		return err
	}

	dispatch := dispatcher.New(watch, pathFilter, hup, logger)

	logger.Printf("[INFO] Watching %d directories for %v...", len(watch.Paths()), pathFilter.Patterns())

	for event := range ch {
		if err := dispatch.Dispatch(ctx, event); err != nil {
			cancel()
			return err
		}
	}

	logger.Println("[INFO] Bye!")

	return nil
}
