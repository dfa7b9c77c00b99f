//go:build windows

package format

import (
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// sysProcAttr hides the console window the formatter would otherwise flash up.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}

func killProcess(p *os.Process) error {
	return p.Kill()
}
