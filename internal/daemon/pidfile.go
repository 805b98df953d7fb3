// Package daemon tracks the background dashboard server through a PID file
// in the state directory.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ErrCorruptPIDFile means the file exists but does not hold a positive PID.
var ErrCorruptPIDFile = errors.New("PID file does not hold a process id")

// PIDFile is the on-disk record of a server process.
type PIDFile struct {
	Path string
}

func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Read returns the recorded PID.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrCorruptPIDFile, p.Path)
	}
	return pid, nil
}

// Status returns the recorded PID and whether that process is alive.
// A missing or corrupt file reports (0, false).
func (p *PIDFile) Status() (int, bool) {
	pid, err := p.Read()
	if err != nil {
		return 0, false
	}
	return pid, alive(pid)
}

// record writes pid through a temp file and a rename.
func (p *PIDFile) record(pid int) error {
	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// clear removes the file. A file that is already gone is not an error.
func (p *PIDFile) clear() error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
