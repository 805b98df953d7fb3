package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("server is already running")
	ErrNotRunning     = errors.New("server is not running")
)

const pollInterval = 50 * time.Millisecond

// Claim records the current process in the PID file. It fails when another
// live process holds the file; a stale or corrupt file is replaced.
func (p *PIDFile) Claim() error {
	if pid, running := p.Status(); running && pid != os.Getpid() {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}
	return p.record(os.Getpid())
}

// Release removes the PID file if it still names the current process.
func (p *PIDFile) Release() {
	if pid, err := p.Read(); err == nil && pid == os.Getpid() {
		_ = p.clear()
	}
}

// Spawn starts cmd detached with its output appended to logPath and records
// the child's PID.
func (p *PIDFile) Spawn(cmd *exec.Cmd, logPath string) (int, error) {
	if pid, running := p.Status(); running {
		return pid, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	cmd.Stdout = logFile
	cmd.Stderr = logFile
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start server: %w", err)
	}
	pid := cmd.Process.Pid
	if err := p.record(pid); err != nil {
		_ = cmd.Process.Kill()
		return 0, fmt.Errorf("write PID file: %w", err)
	}
	_ = cmd.Process.Release()
	return pid, nil
}

// Stop terminates the recorded process, escalating to a kill when it has not
// exited after grace. The PID file is removed in every case, including when
// it names a process that is already gone.
func (p *PIDFile) Stop(grace time.Duration) (int, error) {
	pid, running := p.Status()
	if !running {
		_ = p.clear()
		return 0, ErrNotRunning
	}

	if err := signal(pid, termSignal); err != nil {
		return pid, fmt.Errorf("signal pid %d: %w", pid, err)
	}
	if !waitExit(pid, grace) {
		if err := signal(pid, killSignal); err != nil {
			return pid, fmt.Errorf("kill pid %d: %w", pid, err)
		}
		waitExit(pid, grace)
	}
	return pid, p.clear()
}

func waitExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for alive(pid) {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
	return true
}
