//go:build unix

package format

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr places the formatter in its own process group so that killing it on timeout also reaches any
// children it spawned, e.g. the interpreter behind a wrapper script.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func killProcess(p *os.Process) error {
	if err := unix.Kill(-p.Pid, unix.SIGKILL); err != nil {
		return p.Kill()
	}

	return nil
}
