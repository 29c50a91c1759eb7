package locator

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
)

const DefaultProcRoot = procfs.DefaultMountPoint

// gunicorn renames its master to e.g. "gunicorn: master [website]".
var masterPattern = regexp.MustCompile(`^gunicorn:\s+master\s+\[(.*)\]`)

type Provenance string

const (
	ProvenancePidFile Provenance = "pidfile"
	ProvenanceScan    Provenance = "scan"
)

type Prober interface {
	Probe(pid int) (bool, error)
}

type Config struct {
	PidFile  string
	AppName  string
	ProcRoot string
}

// Locator finds the gunicorn master and remembers it until a liveness probe
// says it is gone.
type Locator struct {
	cfg    Config
	prober Prober
	logger *log.Logger

	pid        int
	provenance Provenance
}

func New(cfg Config, prober Prober, logger *log.Logger) *Locator {
	if cfg.ProcRoot == "" {
		cfg.ProcRoot = DefaultProcRoot
	}

	return &Locator{
		cfg:    cfg,
		prober: prober,
		logger: logger,
	}
}

// Resolve returns the pid of the master process or ErrNotFound. Any other
// error means the environment is not what we expect and must not be ignored.
func (l *Locator) Resolve() (int, error) {
	if l.pid != 0 {
		alive, err := l.prober.Probe(l.pid)
		if err != nil {
			return 0, fmt.Errorf("can't check master process %d: %w", l.pid, err)
		}
		if alive {
			return l.pid, nil
		}

		l.logger.Printf("[INFO] master process %d (%s) is gone", l.pid, l.provenance)
		l.reset()
	}

	if l.cfg.PidFile != "" {
		pid, err := readPidFile(l.cfg.PidFile)
		if err != nil {
			return 0, err
		}

		// the pidfile is trusted, no probe until the next change
		l.remember(pid, ProvenancePidFile)
		l.logger.Printf("[INFO] found master process %d (%s)", pid, l.cfg.PidFile)

		return pid, nil
	}

	return l.scan()
}

func (l *Locator) Cached() (int, bool) {
	return l.pid, l.pid != 0
}

func (l *Locator) Provenance() Provenance {
	return l.provenance
}

func (l *Locator) scan() (int, error) {
	fs, err := procfs.NewFS(l.cfg.ProcRoot)
	if err != nil {
		return 0, fmt.Errorf("can't open %s: %w", l.cfg.ProcRoot, err)
	}

	procs, err := fs.AllProcs()
	if err != nil {
		return 0, fmt.Errorf("can't list processes in %s: %w", l.cfg.ProcRoot, err)
	}
	sort.Sort(procs)

	for _, proc := range procs {
		// the process might be gone between listing and reading
		cmdline, err := proc.CmdLine()
		if err != nil {
			l.logger.Printf("[DEBUG] skip process %d: %s", proc.PID, err)
			continue
		}

		found := masterPattern.FindStringSubmatch(strings.Join(cmdline, " "))
		if found == nil {
			continue
		}

		appName := found[1]
		if l.cfg.AppName != "" && appName != l.cfg.AppName {
			continue
		}

		l.remember(proc.PID, ProvenanceScan)
		l.logger.Printf("[INFO] found master process %d (%s)", proc.PID, appName)

		return proc.PID, nil
	}

	msg := "could not find gunicorn master process"
	if l.cfg.AppName != "" {
		msg += " for " + l.cfg.AppName
	}
	l.logger.Printf("[ERROR] %s", msg)

	return 0, ErrNotFound
}

func (l *Locator) remember(pid int, provenance Provenance) {
	l.pid = pid
	l.provenance = provenance
}

func (l *Locator) reset() {
	l.pid = 0
	l.provenance = ""
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPidFile, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidPidFile, path, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("%w: %s: pid %d", ErrInvalidPidFile, path, pid)
	}

	return pid, nil
}
