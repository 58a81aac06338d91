//go:build !windows

package win32

import (
	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/window"
)

// Backend is unavailable outside Windows. Every method fails with
// errors.ErrUnsupported.
type Backend struct{}

func unsupported() error {
	return errors.NewWindowError("no native window system backend", errors.ErrUnsupported).
		WithRetryable(false)
}

// New always fails on this platform.
func New(*logging.Logger) (*Backend, error) {
	return nil, unsupported()
}

func (b *Backend) Close() error { return nil }
func (b *Backend) TopLevel() ([]window.Info, error) { return nil, unsupported() }
func (b *Backend) Children(window.Handle) ([]window.Handle, error) { return nil, unsupported() }
func (b *Backend) Alive(window.Handle) bool { return false }
func (b *Backend) ProcessID(window.Handle) (int, error) { return 0, unsupported() }
func (b *Backend) SetVisible(window.Handle, bool) error { return unsupported() }
func (b *Backend) SetParent(window.Handle, window.Handle) error { return unsupported() }
func (b *Backend) Style(window.Handle) (window.Style, error) { return 0, unsupported() }
func (b *Backend) SetStyle(window.Handle, window.Style) error { return unsupported() }
func (b *Backend) RefreshFrame(window.Handle) error { return unsupported() }
func (b *Backend) SetBounds(window.Handle, window.Rect) error { return unsupported() }
func (b *Backend) ClientRect(window.Handle) (window.Rect, error) { return window.Rect{}, unsupported() }

var _ window.Backend = (*Backend)(nil)
