package lifecycle

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/launcher"
	"github.com/Iron-Ham/codedock/internal/locator"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/session"
	"github.com/Iron-Ham/codedock/internal/window"
)

// ProcessLauncher starts the external application and kills processes by PID.
type ProcessLauncher interface {
	Launch(ctx context.Context, spec launcher.Spec) (launcher.Process, error)
	KillPID(pid int) error
}

// WindowLocator finds the external application's top-level window.
type WindowLocator interface {
	Find(ctx context.Context, c locator.Criteria) (locator.Candidate, error)
}

// WindowEmbedder reparents and hides external windows.
type WindowEmbedder interface {
	Embed(ctx context.Context, win, container window.Handle) error
	Hide(win window.Handle) error
}

// Options configures what the Controller launches and looks for.
type Options struct {
	Launch launcher.Spec
	Title  string
}

// Controller drives the session state machine.
type Controller struct {
	logger   *logging.Logger
	backend  window.Backend
	launcher ProcessLauncher
	locator  WindowLocator
	embedder WindowEmbedder
	registry *session.Registry
	opts     Options

	// mu serializes embed, detach and shutdown sequences.
	mu     sync.Mutex
	flight singleflight.Group

	cancelMu   sync.Mutex
	cancels    map[uint64]context.CancelFunc
	nextCancel uint64

	// gen advances on every Detach and Shutdown. An embed prepared under
	// an older generation gives up before launching anything.
	gen atomic.Uint64
}

// NewController wires a Controller. A nil logger discards output.
func NewController(
	backend window.Backend,
	l ProcessLauncher,
	loc WindowLocator,
	emb WindowEmbedder,
	registry *session.Registry,
	opts Options,
	logger *logging.Logger,
) *Controller {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Controller{
		logger:   logger,
		backend:  backend,
		launcher: l,
		locator:  loc,
		embedder: emb,
		registry: registry,
		opts:     opts,
	}
}

// Registry returns the injected session registry.
func (c *Controller) Registry() *session.Registry {
	return c.registry
}

// State returns the current session state.
func (c *Controller) State() session.State {
	return c.registry.State()
}

// Embed shows the external window inside container, reusing the cached
// window or process when they are still alive and launching otherwise.
// Concurrent calls are deduplicated: callers that arrive while an embed is
// in flight receive its result.
func (c *Controller) Embed(ctx context.Context, container window.Handle) error {
	return c.PrepareEmbed(container)(ctx)
}

// PrepareEmbed binds an embed of container to the current generation and
// returns it for later execution. A Detach or Shutdown issued after
// PrepareEmbed returns makes the embed fail with ErrCanceled, even when it
// has not started yet.
func (c *Controller) PrepareEmbed(container window.Handle) func(context.Context) error {
	gen := c.gen.Load()
	return func(ctx context.Context) error {
		return c.embed(ctx, container, gen)
	}
}

func (c *Controller) embed(ctx context.Context, container window.Handle, gen uint64) error {
	if container == 0 {
		return errors.NewValidationError("container handle cannot be zero").WithField("container")
	}

	key := "embed:" + strconv.FormatUint(gen, 10)
	_, err, shared := c.flight.Do(key, func() (any, error) {
		return nil, c.embedOnce(ctx, container, gen)
	})
	if shared {
		c.logger.Debug("joined in-flight embed", "container", container.String())
	}
	return err
}

func (c *Controller) embedOnce(ctx context.Context, container window.Handle, gen uint64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.trackCancel(cancel)()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen.Load() != gen {
		c.logger.Debug("embed superseded before it started", "container", container.String())
		return errors.Wrap(errors.ErrCanceled, "embed superseded by detach or shutdown")
	}

	sess := c.registry.Begin()
	log := c.logger.WithSession(sess.ID).With("container", container.String())

	if sess.Window != 0 {
		reused, err := c.reuse(ctx, sess, container, log)
		if reused || err != nil {
			return err
		}
	}

	proc := sess.Process
	if proc != nil && proc.Alive() {
		log.Info("re-locating window of running process", "pid", proc.PID())
	} else {
		var err error
		proc, err = c.launcher.Launch(ctx, c.opts.Launch)
		if err != nil {
			return c.canceledOr(ctx, err)
		}
		if err := c.registry.SetProcess(proc); err != nil {
			return err
		}
	}

	found, err := c.locator.Find(ctx, locator.Criteria{Title: c.opts.Title, PID: proc.PID()})
	if err != nil {
		log.Warn("external window not found; process left running", "pid", proc.PID(), "error", err)
		return c.canceledOr(ctx, err)
	}

	if err := c.embedder.Embed(ctx, found.Handle, container); err != nil {
		log.WithWindow(uintptr(found.Handle)).Warn("embed failed; process left running", "error", err)
		return c.canceledOr(ctx, err)
	}
	if err := c.registry.MarkEmbedded(found.Handle, container); err != nil {
		return err
	}

	log.WithWindow(uintptr(found.Handle)).Info("session embedded",
		"pid", found.PID,
		"pass", found.Pass.String())
	return nil
}

// reuse re-embeds the cached window. It reports false with a nil error when
// the window is gone and the caller should locate a new one.
func (c *Controller) reuse(ctx context.Context, sess session.Session, container window.Handle, log *logging.Logger) (bool, error) {
	if c.backend.Alive(sess.Window) {
		err := c.embedder.Embed(ctx, sess.Window, container)
		if err == nil {
			if err := c.registry.MarkEmbedded(sess.Window, container); err != nil {
				return true, err
			}
			log.WithWindow(uintptr(sess.Window)).Info("reused embedded window", "from", sess.State.String())
			return true, nil
		}
		if !errors.Is(err, errors.ErrStaleHandle) {
			// The window is still valid; keep it cached for a later attempt.
			return true, c.canceledOr(ctx, err)
		}
	}

	log.WithWindow(uintptr(sess.Window)).Debug("cached window is gone")
	if err := c.registry.ForgetWindow(); err != nil {
		return true, err
	}
	return false, nil
}

// Detach hides the embedded window and keeps it cached. It cancels an
// in-flight embed. Detaching when nothing is embedded is a no-op.
func (c *Controller) Detach() error {
	c.gen.Add(1)
	c.cancelInflight()

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.registry.Snapshot()
	if !ok || sess.State != session.Embedded {
		return nil
	}
	log := c.logger.WithSession(sess.ID).WithWindow(uintptr(sess.Window))

	if err := c.embedder.Hide(sess.Window); err != nil {
		if !errors.Is(err, errors.ErrStaleHandle) {
			return err
		}
		log.Debug("window vanished before detach")
		return c.registry.ForgetWindow()
	}
	if err := c.registry.MarkHidden(); err != nil {
		return err
	}
	log.Info("session hidden")
	return nil
}

// Shutdown terminates the external application and clears the session. The
// PID is re-read from the window because the launch reference may belong to
// a short-lived launcher stub. Every failure on this path is logged and
// swallowed.
func (c *Controller) Shutdown() {
	c.gen.Add(1)
	c.cancelInflight()

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.registry.Snapshot()
	if !ok || sess.State == session.Terminated {
		return
	}
	log := c.logger.WithSession(sess.ID).WithPhase("shutdown")

	if sess.Window != 0 && c.backend.Alive(sess.Window) {
		pid, err := c.backend.ProcessID(sess.Window)
		switch {
		case err != nil:
			log.Debug("cannot read window owner", "window", sess.Window.String(), "error", err)
		case pid > 0:
			if err := c.launcher.KillPID(pid); err != nil {
				log.Debug("kill window owner failed", "pid", pid, "error", err)
			}
		}
	}

	if sess.Process != nil && sess.Process.Alive() {
		if err := sess.Process.Kill(); err != nil {
			log.Debug("kill launched process failed", "pid", sess.Process.PID(), "error", err)
		}
	}

	c.registry.Terminate()
	log.Info("session terminated", "from", sess.State.String())
}

// trackCancel registers cancel with cancelInflight until the returned func
// is called.
func (c *Controller) trackCancel(cancel context.CancelFunc) func() {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	if c.cancels == nil {
		c.cancels = make(map[uint64]context.CancelFunc)
	}
	c.nextCancel++
	id := c.nextCancel
	c.cancels[id] = cancel
	return func() {
		c.cancelMu.Lock()
		defer c.cancelMu.Unlock()
		delete(c.cancels, id)
	}
}

func (c *Controller) cancelInflight() {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	for _, cancel := range c.cancels {
		cancel()
	}
}

// canceledOr maps any failure caused by cancellation to ErrCanceled.
func (c *Controller) canceledOr(ctx context.Context, err error) error {
	if ctx.Err() != nil && !errors.Is(err, errors.ErrCanceled) {
		return errors.Wrap(errors.ErrCanceled, err.Error())
	}
	return err
}
