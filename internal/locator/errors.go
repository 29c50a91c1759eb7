package locator

import "errors"

var (
	ErrNotFound       = errors.New("master process not found")
	ErrInvalidPidFile = errors.New("invalid pidfile")
)
