package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

const (
	DefaultWait    = 500 * time.Millisecond
	MinWait        = 20 * time.Millisecond
	DefaultInclude = "*.py"
	DefaultProc    = "/proc"
)

type Config struct {
	WatchPaths []string
	Includes   []string
	AppName    string
	PidFile    string
	ProcRoot   string
	Wait       time.Duration
	Verbose    bool
	Quiet      bool
}

func (c *Config) validate() error {
	if c.Verbose && c.Quiet {
		return fmt.Errorf("%w: quiet and verbose options are both set", ErrValidationFailed)
	}

	if len(c.WatchPaths) == 0 {
		return fmt.Errorf("%w: no directory to watch", ErrValidationFailed)
	}

	for _, include := range c.Includes {
		if !doublestar.ValidatePattern(include) {
			return fmt.Errorf("%w: invalid include pattern %q", ErrValidationFailed, include)
		}
	}

	return nil
}

func Parse(args []string) (Config, error) {
	return parse(args, os.Stdout)
}

func parse(args []string, out io.Writer) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("can't load .env: %w", err)
	}

	parsed := false
	cmd := &cli.Command{
		Name:        filepath.Base(os.Args[0]),
		Usage:       "send gunicorn a HUP when source files change",
		UsageText:   filepath.Base(os.Args[0]) + " [-q|-v] [-w wait] [-p pidfile] [-a appname] [watch_dirs...]",
		Description: "Version: " + Version(),
		HideVersion: true,
		Writer:      out,
		ErrWriter:   out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "a",
				Usage:   "application name of the gunicorn master",
				Sources: cli.EnvVars("HUP_APP"),
			},
			&cli.StringFlag{
				Name:    "p",
				Usage:   "pidfile containing the master pid",
				Sources: cli.EnvVars("HUP_PIDFILE"),
			},
			&cli.IntFlag{
				Name:    "w",
				Value:   int64(DefaultWait / time.Millisecond),
				Usage:   "wait interval in milliseconds before sending HUP",
				Sources: cli.EnvVars("HUP_WAIT"),
			},
			&cli.StringSliceFlag{
				Name:    "include",
				Usage:   "glob of file names that trigger a reload (default: " + DefaultInclude + ")",
				Sources: cli.EnvVars("HUP_INCLUDE"),
			},
			&cli.StringFlag{
				Name:    "proc",
				Value:   DefaultProc,
				Usage:   "procfs mount point",
				Sources: cli.EnvVars("HUP_PROC"),
			},
			&cli.BoolFlag{
				Name:  "v",
				Usage: "be more verbose",
			},
			&cli.BoolFlag{
				Name:  "q",
				Usage: "quiet",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			parsed = true

			cfg.AppName = cmd.String("a")
			cfg.PidFile = cmd.String("p")
			cfg.Wait = max(time.Duration(cmd.Int("w"))*time.Millisecond, MinWait)
			cfg.Includes = cmd.StringSlice("include")
			if len(cfg.Includes) == 0 {
				cfg.Includes = []string{DefaultInclude}
			}
			cfg.ProcRoot = cmd.String("proc")
			cfg.Verbose = cmd.Bool("v")
			cfg.Quiet = cmd.Bool("q")

			cfg.WatchPaths = cmd.Args().Slice()
			if len(cfg.WatchPaths) == 0 {
				cfg.WatchPaths = searchPath()
			}

			return nil
		},
	}

	if err := cmd.Run(context.Background(), append([]string{cmd.Name}, args...)); err != nil {
		return cfg, fmt.Errorf("failed to parse flags: %w", err)
	}

	if !parsed {
		return cfg, ErrHelpShown
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// searchPath lists the existing directories of the working directory and
// PYTHONPATH, which is where a gunicorn app's code is imported from.
func searchPath() []string {
	candidates := append([]string{"."}, filepath.SplitList(os.Getenv("PYTHONPATH"))...)

	dirs := lo.Filter(candidates, func(dir string, _ int) bool {
		if dir == "" {
			return false
		}
		info, err := os.Stat(dir)
		return err == nil && info.IsDir()
	})

	return lo.Uniq(dirs)
}
