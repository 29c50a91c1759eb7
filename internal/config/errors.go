package config

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrHelpShown        = errors.New("help shown")
)
