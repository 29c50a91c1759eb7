package filter

import "errors"

var ErrInvalidPattern = errors.New("invalid pattern")
