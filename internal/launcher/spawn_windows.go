//go:build windows

package launcher

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// hiddenProcAttr starts the process without a console window and with its
// initial window hidden.
func hiddenProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW | windows.CREATE_NEW_PROCESS_GROUP,
	}
}
