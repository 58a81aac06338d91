// Package win32 implements window.Backend on top of user32.dll.
//
// Every call is marshalled onto a single OS-thread-locked goroutine
// (uithread.Loop) so window-tree queries and reparenting always run on the
// same thread. On other platforms New returns errors.ErrUnsupported and the
// Backend methods fail the same way.
package win32
