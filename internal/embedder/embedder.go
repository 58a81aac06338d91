// Package embedder reparents an external top-level window into a host
// container and turns it into a borderless child.
package embedder

import (
	"context"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/window"
)

// Limits bound the subtree walk used to strip decorations.
type Limits struct {
	// MaxDepth is the deepest level visited below the top-level window.
	MaxDepth int
	// MaxWindows caps the number of windows visited, the root included.
	MaxWindows int
}

// DefaultLimits covers editors that expose a handful of nested surfaces.
func DefaultLimits() Limits {
	return Limits{MaxDepth: 8, MaxWindows: 256}
}

// Embedder performs the reparent sequence against a window.Backend.
type Embedder struct {
	backend window.Backend
	limits  Limits
	logger  *logging.Logger
}

// New creates an Embedder. A nil logger discards output. A non-positive
// MaxWindows falls back to the default; a negative MaxDepth means root only.
func New(backend window.Backend, limits Limits, logger *logging.Logger) *Embedder {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if limits.MaxWindows <= 0 {
		limits.MaxWindows = DefaultLimits().MaxWindows
	}
	if limits.MaxDepth < 0 {
		limits.MaxDepth = 0
	}
	return &Embedder{
		backend: backend,
		limits:  limits,
		logger:  logger.WithPhase("embed"),
	}
}

// Embed moves win into container: hide, reparent, strip decorations and
// refresh frames, fill the container's client area, show.
//
// A container that is not a live window fails with ErrEmbedFailed before
// win is touched. A dead win fails with ErrStaleHandle. Neither affects the
// owning process.
func (e *Embedder) Embed(ctx context.Context, win, container window.Handle) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCanceled, "embed")
	}
	if container == 0 || !e.backend.Alive(container) {
		return errors.NewWindowError("container is not a live window", errors.ErrEmbedFailed).
			WithWindow(uintptr(win)).
			WithContainer(uintptr(container)).
			WithPhase("validate")
	}
	if !e.backend.Alive(win) {
		return e.stale(win, container, "validate")
	}

	log := e.logger.WithWindow(uintptr(win)).With("container", container.String())

	if err := e.backend.SetVisible(win, false); err != nil {
		return e.fail(err, win, container, "hide")
	}
	if err := e.backend.SetParent(win, container); err != nil {
		return e.abort(err, win, container, "reparent")
	}
	if err := e.StripDecorations(win); err != nil {
		return e.abort(err, win, container, "restyle")
	}

	rect, err := e.backend.ClientRect(container)
	if err != nil {
		return e.abort(err, win, container, "measure")
	}
	if !rect.Empty() {
		if err := e.backend.SetBounds(win, window.Rect{Width: rect.Width, Height: rect.Height}); err != nil {
			return e.abort(err, win, container, "position")
		}
	}

	if err := e.backend.SetVisible(win, true); err != nil {
		return e.fail(err, win, container, "show")
	}

	log.Info("window embedded", "width", rect.Width, "height", rect.Height)
	return nil
}

// Hide hides win without changing its parent.
func (e *Embedder) Hide(win window.Handle) error {
	if !e.backend.Alive(win) {
		return e.stale(win, 0, "hide")
	}
	if err := e.backend.SetVisible(win, false); err != nil {
		return e.fail(err, win, 0, "hide")
	}
	return nil
}

// abort reports a failure after the window was hidden and makes it visible
// again so the user is not left with an invisible editor.
func (e *Embedder) abort(err error, win, container window.Handle, phase string) error {
	failure := e.fail(err, win, container, phase)
	if e.backend.Alive(win) {
		_ = e.backend.SetVisible(win, true)
	}
	return failure
}

func (e *Embedder) stale(win, container window.Handle, phase string) error {
	return errors.NewWindowError("window is no longer valid", errors.ErrStaleHandle).
		WithWindow(uintptr(win)).
		WithContainer(uintptr(container)).
		WithPhase(phase).
		WithSeverity(errors.SeverityDebug).
		WithRetryable(false)
}

// fail classifies a backend error. A window that died mid-sequence is
// stale; anything else is an embed failure.
func (e *Embedder) fail(err error, win, container window.Handle, phase string) error {
	if errors.Is(err, errors.ErrStaleHandle) || !e.backend.Alive(win) {
		return e.stale(win, container, phase)
	}
	e.logger.WithWindow(uintptr(win)).Warn("embed step failed", "step", phase, "error", err)
	if errors.Is(err, errors.ErrEmbedFailed) {
		return err
	}
	return errors.NewWindowError("embed step failed", errors.Join(errors.ErrEmbedFailed, err)).
		WithWindow(uintptr(win)).
		WithContainer(uintptr(container)).
		WithPhase(phase)
}
