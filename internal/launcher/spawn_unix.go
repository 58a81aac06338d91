//go:build !windows

package launcher

import "syscall"

// hiddenProcAttr puts the process in its own group so terminal signals sent
// to the host do not reach it.
func hiddenProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
