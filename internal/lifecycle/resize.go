package lifecycle

import (
	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/session"
	"github.com/Iron-Ham/codedock/internal/window"
)

// ResizeSynchronizer keeps the embedded window filling its container.
type ResizeSynchronizer struct {
	backend  window.Backend
	registry *session.Registry
	logger   *logging.Logger
}

// NewResizeSynchronizer creates a ResizeSynchronizer. A nil logger discards
// output.
func NewResizeSynchronizer(backend window.Backend, registry *session.Registry, logger *logging.Logger) *ResizeSynchronizer {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &ResizeSynchronizer{
		backend:  backend,
		registry: registry,
		logger:   logger.WithPhase("resize"),
	}
}

// Sync sizes the embedded window to the container's client area at (0,0).
// It does nothing unless the session is Embedded, and ignores a container
// with no positive area. Dead handles are logged and ignored.
func (r *ResizeSynchronizer) Sync() error {
	sess, ok := r.registry.Snapshot()
	if !ok || sess.State != session.Embedded {
		return nil
	}

	if !r.backend.Alive(sess.Window) || !r.backend.Alive(sess.Container) {
		r.logger.Debug("resize skipped for dead handle",
			"window", sess.Window.String(),
			"container", sess.Container.String())
		return nil
	}

	rect, err := r.backend.ClientRect(sess.Container)
	if err != nil {
		return r.ignoreStale(err)
	}
	if rect.Empty() {
		return nil
	}

	if err := r.backend.SetBounds(sess.Window, window.Rect{Width: rect.Width, Height: rect.Height}); err != nil {
		return r.ignoreStale(err)
	}
	return nil
}

func (r *ResizeSynchronizer) ignoreStale(err error) error {
	if errors.Is(err, errors.ErrStaleHandle) {
		r.logger.Debug("resize raced a closing window", "error", err)
		return nil
	}
	return err
}
