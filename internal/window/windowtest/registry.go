// Package windowtest provides an in-memory window system and process table
// for deterministic tests of the embedding pipeline.
//
// Registry implements window.Backend. Windows can be scheduled to appear
// only after a number of enumerations, which models the cold start of the
// external editor. Spawner implements launcher.Spawner against the same
// Registry so killing a PID destroys its windows.
package windowtest

import (
	"sort"
	"sync"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/window"
)

// Window is the fake state of one native window.
type Window struct {
	Handle  window.Handle
	PID     int
	Title   string
	Visible bool
	Style   window.Style
	Parent  window.Handle
	Bounds  window.Rect

	// AppearAfter hides the window from TopLevel until that many
	// enumerations have completed.
	AppearAfter int

	dead bool
}

// Registry is a fake window system. It is safe for concurrent use.
type Registry struct {
	mu           sync.Mutex
	next         window.Handle
	windows      map[window.Handle]*Window
	enumerations int
	calls        map[string]int
	failures     map[string]error
}

// NewRegistry returns an empty Registry. Handles start at 0x1000.
func NewRegistry() *Registry {
	return &Registry{
		next:     0x1000,
		windows:  make(map[window.Handle]*Window),
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
}

// Add registers w and returns its handle, assigning one when w.Handle is zero.
func (r *Registry) Add(w Window) window.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w.Handle == 0 {
		w.Handle = r.next
		r.next += 0x10
	}
	stored := w
	r.windows[w.Handle] = &stored
	return w.Handle
}

// AddTopLevel registers a decorated, visible top-level window.
func (r *Registry) AddTopLevel(pid int, title string) window.Handle {
	return r.Add(Window{
		PID:     pid,
		Title:   title,
		Visible: true,
		Style:   window.Decorations,
		Bounds:  window.Rect{X: 100, Y: 100, Width: 1024, Height: 768},
	})
}

// AddContainer registers an untitled host surface with the given client size.
func (r *Registry) AddContainer(width, height int) window.Handle {
	return r.Add(Window{
		PID:     1,
		Visible: true,
		Style:   window.StyleChild,
		Bounds:  window.Rect{Width: width, Height: height},
	})
}

// Destroy invalidates h.
func (r *Registry) Destroy(h window.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.windows[h]; ok {
		w.dead = true
	}
}

// DestroyProcess invalidates every window owned by pid and reports whether
// any existed.
func (r *Registry) DestroyProcess(pid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for _, w := range r.windows {
		if w.PID == pid && !w.dead {
			w.dead = true
			found = true
		}
	}
	return found
}

// Resize changes the bounds of h, typically a container.
func (r *Registry) Resize(h window.Handle, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.windows[h]; ok {
		w.Bounds.Width = width
		w.Bounds.Height = height
	}
}

// Get returns a copy of the window state, including dead windows.
func (r *Registry) Get(h window.Handle) (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[h]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Calls returns how many times the named Backend method was invoked.
func (r *Registry) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// Enumerations returns the number of completed TopLevel calls.
func (r *Registry) Enumerations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enumerations
}

// Fail makes the named Backend method return err until cleared with a nil err.
func (r *Registry) Fail(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, method)
		return
	}
	r.failures[method] = err
}

// enter records a call and returns an injected failure. Callers hold mu.
func (r *Registry) enter(method string) error {
	r.calls[method]++
	return r.failures[method]
}

// live returns the window for h or a stale-handle error. Callers hold mu.
func (r *Registry) live(h window.Handle) (*Window, error) {
	w, ok := r.windows[h]
	if !ok || w.dead {
		return nil, errors.NewWindowError("no such window", errors.ErrStaleHandle).
			WithWindow(uintptr(h)).
			WithSeverity(errors.SeverityDebug)
	}
	return w, nil
}

// TopLevel implements window.Backend.
func (r *Registry) TopLevel() ([]window.Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("TopLevel"); err != nil {
		return nil, err
	}
	r.enumerations++

	var out []window.Info
	for _, w := range r.windows {
		if w.dead || w.Parent != 0 || !w.Visible || w.Title == "" {
			continue
		}
		if r.enumerations <= w.AppearAfter {
			continue
		}
		out = append(out, window.Info{Handle: w.Handle, PID: w.PID, Title: w.Title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

// Children implements window.Backend.
func (r *Registry) Children(h window.Handle) ([]window.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("Children"); err != nil {
		return nil, err
	}
	if _, err := r.live(h); err != nil {
		return nil, err
	}

	var out []window.Handle
	for _, w := range r.windows {
		if !w.dead && w.Parent == h {
			out = append(out, w.Handle)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Alive implements window.Backend.
func (r *Registry) Alive(h window.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Alive"]++
	_, err := r.live(h)
	return err == nil
}

// ProcessID implements window.Backend.
func (r *Registry) ProcessID(h window.Handle) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("ProcessID"); err != nil {
		return 0, err
	}
	w, err := r.live(h)
	if err != nil {
		return 0, err
	}
	return w.PID, nil
}

// SetVisible implements window.Backend.
func (r *Registry) SetVisible(h window.Handle, visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("SetVisible"); err != nil {
		return err
	}
	w, err := r.live(h)
	if err != nil {
		return err
	}
	w.Visible = visible
	return nil
}

// SetParent implements window.Backend.
func (r *Registry) SetParent(h, parent window.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("SetParent"); err != nil {
		return err
	}
	w, err := r.live(h)
	if err != nil {
		return err
	}
	if parent != 0 {
		if _, err := r.live(parent); err != nil {
			return errors.NewWindowError("invalid parent", errors.ErrEmbedFailed).
				WithWindow(uintptr(h)).
				WithContainer(uintptr(parent))
		}
	}
	w.Parent = parent
	return nil
}

// Style implements window.Backend.
func (r *Registry) Style(h window.Handle) (window.Style, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("Style"); err != nil {
		return 0, err
	}
	w, err := r.live(h)
	if err != nil {
		return 0, err
	}
	return w.Style, nil
}

// SetStyle implements window.Backend.
func (r *Registry) SetStyle(h window.Handle, s window.Style) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("SetStyle"); err != nil {
		return err
	}
	w, err := r.live(h)
	if err != nil {
		return err
	}
	w.Style = s
	return nil
}

// RefreshFrame implements window.Backend.
func (r *Registry) RefreshFrame(h window.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("RefreshFrame"); err != nil {
		return err
	}
	_, err := r.live(h)
	return err
}

// SetBounds implements window.Backend.
func (r *Registry) SetBounds(h window.Handle, rect window.Rect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("SetBounds"); err != nil {
		return err
	}
	w, err := r.live(h)
	if err != nil {
		return err
	}
	w.Bounds = rect
	return nil
}

// ClientRect implements window.Backend.
func (r *Registry) ClientRect(h window.Handle) (window.Rect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("ClientRect"); err != nil {
		return window.Rect{}, err
	}
	w, err := r.live(h)
	if err != nil {
		return window.Rect{}, err
	}
	return window.Rect{Width: w.Bounds.Width, Height: w.Bounds.Height}, nil
}

var _ window.Backend = (*Registry)(nil)
