// Package window defines the platform-neutral view of the native window
// system used by the embedding engine: handles, geometry, style bits and the
// Backend capability set {enumerate, reparent, restyle, reposition, show,
// liveness}.
//
// Concrete backends live in subpackages: win32 talks to user32 on Windows,
// windowtest is an in-memory registry for deterministic tests.
package window

import "fmt"

// Handle is an opaque native window identifier. The zero Handle never
// refers to a window. A non-zero Handle may become invalid at any time and
// may later be reused for an unrelated window, so holders must check
// liveness before every use.
type Handle uintptr

// String renders the handle in hex.
func (h Handle) String() string {
	return fmt.Sprintf("%#x", uintptr(h))
}

// Rect describes a rectangle in client coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Info is a snapshot of a top-level window taken during enumeration.
type Info struct {
	Handle Handle
	PID    int
	Title  string
}

// Style is the set of window style bits.
type Style uint32

// Style bits understood by the embedder. Values match the Win32 WS_*
// constants so the win32 backend can pass them through unchanged.
const (
	StyleChild       Style = 0x40000000
	StylePopup       Style = 0x80000000
	StyleCaption     Style = 0x00C00000
	StyleSysMenu     Style = 0x00080000
	StyleThickFrame  Style = 0x00040000
	StyleMinimizeBox Style = 0x00020000
	StyleMaximizeBox Style = 0x00010000
)

// Decorations is every bit that draws top-level chrome: title bar, resize
// border, system menu and minimize/maximize buttons.
const Decorations = StyleCaption | StyleThickFrame | StyleMinimizeBox | StyleMaximizeBox | StyleSysMenu

// Has reports whether all bits in mask are set.
func (s Style) Has(mask Style) bool {
	return s&mask == mask
}

// Decorated reports whether any decoration bit is set.
func (s Style) Decorated() bool {
	return s&Decorations != 0
}

// Backend is the window-system capability set. Implementations must treat
// an operation on a dead handle as errors.ErrStaleHandle, never a panic.
//
// Calls that touch windows are expected to run on the thread that owns the
// host's windowing context; backends that need this marshal internally.
type Backend interface {
	// TopLevel enumerates visible top-level windows with non-empty titles.
	TopLevel() ([]Info, error)

	// Children returns the direct child windows of h.
	Children(h Handle) ([]Handle, error)

	// Alive reports whether h currently refers to a window.
	Alive(h Handle) bool

	// ProcessID returns the PID of the process that owns h.
	ProcessID(h Handle) (int, error)

	// SetVisible shows or hides h.
	SetVisible(h Handle, visible bool) error

	// SetParent makes parent the new ancestor of h.
	SetParent(h, parent Handle) error

	// Style returns the style bits of h.
	Style(h Handle) (Style, error)

	// SetStyle replaces the style bits of h.
	SetStyle(h Handle, s Style) error

	// RefreshFrame asks the window system to recompute the non-client frame
	// of h without moving or resizing it.
	RefreshFrame(h Handle) error

	// SetBounds moves and resizes h relative to its parent's client area.
	SetBounds(h Handle, r Rect) error

	// ClientRect returns the client rectangle of h.
	ClientRect(h Handle) (Rect, error)
}
