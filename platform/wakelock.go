package platform

import (
	"log"
	"os/exec"
	"runtime"
	"sync"
)

type holder interface {
	Release() error
}

type processHolder struct {
	cmd *exec.Cmd
}

func (p processHolder) Release() error {
	if err := p.cmd.Process.Kill(); err != nil {
		return err
	}
	_ = p.cmd.Wait()
	return nil
}

// Inhibitor keeps the machine from idling by holding an inhibitor process
// (systemd-inhibit on Linux, caffeinate on macOS) while active.
// Failures are logged and otherwise ignored.
type Inhibitor struct {
	mu       sync.Mutex
	logger   *log.Logger
	lookPath func(string) (string, error)
	start    func(name string, args ...string) (holder, error)
	held     holder
}

// NewInhibitor returns an inactive Inhibitor.
func NewInhibitor(logger *log.Logger) *Inhibitor {
	if logger == nil {
		logger = log.Default()
	}
	return &Inhibitor{
		logger:   logger,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) (holder, error) {
			cmd := exec.Command(name, args...)
			if err := cmd.Start(); err != nil {
				return nil, err
			}
			return processHolder{cmd: cmd}, nil
		},
	}
}

// SetActive implements timer.WakeLock.
func (i *Inhibitor) SetActive(active bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !active {
		i.releaseLocked()
		return
	}
	if i.held != nil {
		return
	}

	name, args, ok := i.command()
	if !ok {
		return
	}
	h, err := i.start(name, args...)
	if err != nil {
		i.logger.Printf("wakelock: %s: %v", name, err)
		return
	}
	i.held = h
}

// Active reports whether an inhibitor is held.
func (i *Inhibitor) Active() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.held != nil
}

func (i *Inhibitor) releaseLocked() {
	if i.held == nil {
		return
	}
	if err := i.held.Release(); err != nil {
		i.logger.Printf("wakelock: release: %v", err)
	}
	i.held = nil
}

func (i *Inhibitor) command() (string, []string, bool) {
	switch runtime.GOOS {
	case "darwin":
		if _, err := i.lookPath("caffeinate"); err != nil {
			return "", nil, false
		}
		return "caffeinate", []string{"-d", "-i"}, true
	default:
		if _, err := i.lookPath("systemd-inhibit"); err != nil {
			return "", nil, false
		}
		return "systemd-inhibit", []string{
			"--what=idle:sleep",
			"--who=lemoncello",
			"--why=Timer running",
			"sleep", "infinity",
		}, true
	}
}
