package process

import "errors"

var ErrInvalidPid = errors.New("invalid pid")
