//go:build windows

package win32

import (
	"context"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/uithread"
	"github.com/Iron-Ham/codedock/internal/window"
)

const (
	gwlStyle = -16

	gaParent = 1

	swHide = 0
	swShow = 5

	swpNoSize        = 0x0001
	swpNoMove        = 0x0002
	swpNoZOrder      = 0x0004
	swpNoActivate    = 0x0010
	swpFrameChanged  = 0x0020
	swpRefreshFrame  = swpNoMove | swpNoSize | swpNoZOrder | swpNoActivate | swpFrameChanged
	swpPlaceInParent = swpNoZOrder | swpNoActivate
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procEnumChildWindows         = user32.NewProc("EnumChildWindows")
	procGetAncestor              = user32.NewProc("GetAncestor")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procSetParent                = user32.NewProc("SetParent")
	procGetWindowLongPtrW        = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW        = user32.NewProc("SetWindowLongPtrW")
	procGetWindowLongW           = user32.NewProc("GetWindowLongW")
	procSetWindowLongW           = user32.NewProc("SetWindowLongW")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procShowWindow               = user32.NewProc("ShowWindow")
	procGetClientRect            = user32.NewProc("GetClientRect")
	procSetLastError             = kernel32.NewProc("SetLastError")
)

// enumeration state shared with the single callback. Only the loop thread
// enumerates, so one collector is enough; the mutex keeps the race detector
// quiet.
var (
	enumMu      sync.Mutex
	enumHandles []window.Handle
	enumFn      = windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		enumMu.Lock()
		enumHandles = append(enumHandles, window.Handle(hwnd))
		enumMu.Unlock()
		return 1
	})
)

// Backend is the user32 implementation of window.Backend.
type Backend struct {
	loop   *uithread.Loop
	logger *logging.Logger
}

// New loads user32 and starts the UI thread loop. Close releases it.
func New(logger *logging.Logger) (*Backend, error) {
	if err := user32.Load(); err != nil {
		return nil, errors.NewWindowError("user32.dll unavailable", errors.Join(errors.ErrUnsupported, err))
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Backend{
		loop:   uithread.Start(),
		logger: logger.WithPhase("win32"),
	}, nil
}

// Close stops the UI thread loop.
func (b *Backend) Close() error {
	b.loop.Close()
	return nil
}

func (b *Backend) do(fn func() error) error {
	return b.loop.Do(context.Background(), fn)
}

func stale(h window.Handle) error {
	return errors.NewWindowError("window handle is not valid", errors.ErrStaleHandle).
		WithWindow(uintptr(h)).
		WithSeverity(errors.SeverityDebug).
		WithRetryable(false)
}

func callFailed(h window.Handle, call string, errno error) error {
	return errors.NewWindowError(call+" failed", errno).WithWindow(uintptr(h)).WithPhase(call)
}

func isWindow(h window.Handle) bool {
	r, _, _ := procIsWindow.Call(uintptr(h))
	return r != 0
}

func clearLastError() {
	_, _, _ = procSetLastError.Call(0)
}

// failed interprets a Win32 return where zero may be a legitimate value.
func failed(r uintptr, errno error) bool {
	if r != 0 {
		return false
	}
	en, ok := errno.(syscall.Errno)
	return !ok || en != 0
}

func enumerate(fn func()) []window.Handle {
	enumMu.Lock()
	enumHandles = enumHandles[:0]
	enumMu.Unlock()

	fn()

	enumMu.Lock()
	defer enumMu.Unlock()
	return append([]window.Handle(nil), enumHandles...)
}

func windowText(h window.Handle) string {
	n, _, _ := procGetWindowTextLengthW.Call(uintptr(h))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	got, _, _ := procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:got])
}

func processID(h window.Handle) int {
	var pid uint32
	_, _, _ = procGetWindowThreadProcessID.Call(uintptr(h), uintptr(unsafe.Pointer(&pid)))
	return int(pid)
}

// TopLevel implements window.Backend.
func (b *Backend) TopLevel() ([]window.Info, error) {
	var out []window.Info
	err := b.do(func() error {
		handles := enumerate(func() {
			_, _, _ = procEnumWindows.Call(enumFn, 0)
		})
		for _, h := range handles {
			visible, _, _ := procIsWindowVisible.Call(uintptr(h))
			if visible == 0 {
				continue
			}
			title := windowText(h)
			if title == "" {
				continue
			}
			out = append(out, window.Info{Handle: h, PID: processID(h), Title: title})
		}
		return nil
	})
	return out, err
}

// Children implements window.Backend. EnumChildWindows walks the whole
// subtree, so results are filtered to direct children.
func (b *Backend) Children(h window.Handle) ([]window.Handle, error) {
	var out []window.Handle
	err := b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		all := enumerate(func() {
			_, _, _ = procEnumChildWindows.Call(uintptr(h), enumFn, 0)
		})
		for _, child := range all {
			parent, _, _ := procGetAncestor.Call(uintptr(child), gaParent)
			if window.Handle(parent) == h {
				out = append(out, child)
			}
		}
		return nil
	})
	return out, err
}

// Alive implements window.Backend.
func (b *Backend) Alive(h window.Handle) bool {
	if h == 0 {
		return false
	}
	alive := false
	_ = b.do(func() error {
		alive = isWindow(h)
		return nil
	})
	return alive
}

// ProcessID implements window.Backend.
func (b *Backend) ProcessID(h window.Handle) (int, error) {
	pid := 0
	err := b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		pid = processID(h)
		return nil
	})
	return pid, err
}

// SetVisible implements window.Backend.
func (b *Backend) SetVisible(h window.Handle, visible bool) error {
	cmd := uintptr(swHide)
	if visible {
		cmd = swShow
	}
	return b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		// The return value is the previous visibility, not a status.
		_, _, _ = procShowWindow.Call(uintptr(h), cmd)
		return nil
	})
}

// SetParent implements window.Backend.
func (b *Backend) SetParent(h, parent window.Handle) error {
	return b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		if parent != 0 && !isWindow(parent) {
			return errors.NewWindowError("parent is not a window", errors.ErrEmbedFailed).
				WithWindow(uintptr(h)).
				WithContainer(uintptr(parent))
		}
		clearLastError()
		r, _, errno := procSetParent.Call(uintptr(h), uintptr(parent))
		if failed(r, errno) {
			return callFailed(h, "SetParent", errno)
		}
		return nil
	})
}

func getLong(h window.Handle, index int32) (uintptr, error) {
	proc := procGetWindowLongPtrW
	if proc.Find() != nil {
		proc = procGetWindowLongW
	}
	clearLastError()
	r, _, errno := proc.Call(uintptr(h), uintptr(index))
	if failed(r, errno) {
		return 0, errno
	}
	return r, nil
}

func setLong(h window.Handle, index int32, value uintptr) error {
	proc := procSetWindowLongPtrW
	if proc.Find() != nil {
		proc = procSetWindowLongW
	}
	clearLastError()
	r, _, errno := proc.Call(uintptr(h), uintptr(index), value)
	if failed(r, errno) {
		return errno
	}
	return nil
}

// Style implements window.Backend.
func (b *Backend) Style(h window.Handle) (window.Style, error) {
	var style window.Style
	err := b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		v, err := getLong(h, gwlStyle)
		if err != nil {
			return callFailed(h, "GetWindowLongPtr", err)
		}
		style = window.Style(uint32(v))
		return nil
	})
	return style, err
}

// SetStyle implements window.Backend.
func (b *Backend) SetStyle(h window.Handle, s window.Style) error {
	return b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		if err := setLong(h, gwlStyle, uintptr(uint32(s))); err != nil {
			return callFailed(h, "SetWindowLongPtr", err)
		}
		return nil
	})
}

// RefreshFrame implements window.Backend.
func (b *Backend) RefreshFrame(h window.Handle) error {
	return b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		r, _, errno := procSetWindowPos.Call(uintptr(h), 0, 0, 0, 0, 0, swpRefreshFrame)
		if r == 0 {
			return callFailed(h, "SetWindowPos", errno)
		}
		return nil
	})
}

// SetBounds implements window.Backend.
func (b *Backend) SetBounds(h window.Handle, rect window.Rect) error {
	return b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		r, _, errno := procSetWindowPos.Call(uintptr(h), 0,
			uintptr(int32(rect.X)), uintptr(int32(rect.Y)),
			uintptr(int32(rect.Width)), uintptr(int32(rect.Height)),
			swpPlaceInParent)
		if r == 0 {
			return callFailed(h, "SetWindowPos", errno)
		}
		return nil
	})
}

// ClientRect implements window.Backend.
func (b *Backend) ClientRect(h window.Handle) (window.Rect, error) {
	var out window.Rect
	err := b.do(func() error {
		if !isWindow(h) {
			return stale(h)
		}
		var rc windows.Rect
		r, _, errno := procGetClientRect.Call(uintptr(h), uintptr(unsafe.Pointer(&rc)))
		if r == 0 {
			return callFailed(h, "GetClientRect", errno)
		}
		out = window.Rect{
			X:      int(rc.Left),
			Y:      int(rc.Top),
			Width:  int(rc.Right - rc.Left),
			Height: int(rc.Bottom - rc.Top),
		}
		return nil
	})
	return out, err
}

var _ window.Backend = (*Backend)(nil)
