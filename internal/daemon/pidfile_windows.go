//go:build windows

package daemon

import (
	"os"
	"os/exec"
	"syscall"
)

// Windows can only terminate, so both stop phases kill.
const (
	termSignal = syscall.SIGKILL
	killSignal = syscall.SIGKILL
)

// alive reports whether a handle to pid can be opened.
func alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}

func signal(pid int, _ syscall.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	defer proc.Release()
	return proc.Kill()
}

// detach is a no-op; there is no session to leave.
func detach(_ *exec.Cmd) {}

// ShutdownSignals are the signals that stop a foreground command.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
