package process

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

type Signaler interface {
	// Probe reports whether pid refers to a live process. A vanished
	// process is (false, nil); any other failure is returned as is.
	Probe(pid int) (bool, error)
	// Hangup delivers SIGHUP to pid.
	Hangup(pid int) error
}

type Unix struct{}

func New() *Unix {
	return &Unix{}
}

func (u *Unix) Probe(pid int) (bool, error) {
	if pid <= 0 {
		return false, fmt.Errorf("%w: %d", ErrInvalidPid, pid)
	}

	err := unix.Kill(pid, 0)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.ESRCH) {
		return false, nil
	}

	return false, fmt.Errorf("can't probe process %d: %w", pid, err)
}

func (u *Unix) Hangup(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPid, pid)
	}

	if err := unix.Kill(pid, unix.SIGHUP); err != nil {
		return fmt.Errorf("can't send SIGHUP to %d: %w", pid, err)
	}

	return nil
}
