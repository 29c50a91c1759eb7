package logging

import (
	"io"
	"log"

	"github.com/hashicorp/logutils"
)

const (
	LevelDebug logutils.LogLevel = "DEBUG"
	LevelInfo  logutils.LogLevel = "INFO"
	LevelWarn  logutils.LogLevel = "WARN"
	LevelError logutils.LogLevel = "ERROR"
)

// New returns a logger that drops every line whose [LEVEL] prefix is below
// minLevel. Lines without a prefix are always written.
func New(minLevel logutils.LogLevel, w io.Writer) *log.Logger {
	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError},
		MinLevel: minLevel,
		Writer:   w,
	}

	return log.New(filter, "", log.LstdFlags)
}

func Level(verbose, quiet bool) logutils.LogLevel {
	switch {
	case quiet:
		return LevelError
	case verbose:
		return LevelDebug
	default:
		return LevelInfo
	}
}

func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
