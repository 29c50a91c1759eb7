package watcher

import "errors"

var ErrNoWatchPaths = errors.New("no directory could be watched")
