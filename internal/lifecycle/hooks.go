package lifecycle

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/event"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/session"
)

// Hooks connects host lifecycle events on a bus to a Controller and
// publishes the controller's outcomes back as notifications.
//
// Attach runs on its own goroutine because locating a cold-starting editor
// takes seconds; detach, resize and shutdown run on the publisher's
// goroutine so a shutdown is complete when Publish returns.
type Hooks struct {
	bus    *event.Bus
	ctrl   *Controller
	resize *ResizeSynchronizer
	logger *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu  sync.Mutex
	ids []string
}

// Bind subscribes the controller to the host hooks on bus. Attach work is
// bound to ctx. Call Close to unsubscribe and wait for attach work.
func Bind(ctx context.Context, bus *event.Bus, ctrl *Controller, resize *ResizeSynchronizer, logger *logging.Logger) *Hooks {
	if logger == nil {
		logger = logging.NopLogger()
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Hooks{
		bus:    bus,
		ctrl:   ctrl,
		resize: resize,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	h.ids = append(h.ids,
		bus.Subscribe(event.TypeContainerAttached, h.onAttached),
		bus.Subscribe(event.TypeContainerDetached, h.onDetached),
		bus.Subscribe(event.TypeContainerResized, h.onResized),
		bus.Subscribe(event.TypeHostShutdown, h.onShutdown),
	)

	ctrl.Registry().OnTransition(func(tr session.Transition) {
		bus.Publish(event.NewSessionStateChangedEvent(tr.SessionID, tr.From.String(), tr.To.String(), tr.Window))
	})
	return h
}

func (h *Hooks) onAttached(e event.Event) {
	attached, ok := e.(event.ContainerAttachedEvent)
	if !ok {
		return
	}
	// Bound now so a detach or shutdown published right after this
	// attach supersedes it.
	embed := h.ctrl.PrepareEmbed(attached.Container)
	h.wg.Go(func() {
		if err := embed(h.ctx); err != nil {
			h.report(err)
		}
	})
}

func (h *Hooks) onDetached(event.Event) {
	if err := h.ctrl.Detach(); err != nil {
		h.report(err)
	}
}

func (h *Hooks) onResized(event.Event) {
	if err := h.resize.Sync(); err != nil {
		h.logger.Warn("resize failed", "error", err)
	}
}

func (h *Hooks) onShutdown(e event.Event) {
	reason := ""
	if s, ok := e.(event.HostShutdownEvent); ok {
		reason = s.Reason
	}
	h.logger.Info("host shutdown", "reason", reason)
	h.ctrl.Shutdown()
}

// internalFailure replaces messages that are not meant for the host.
const internalFailure = "internal error; see the codedock log"

// report turns a failure into an embed.failed notification. Cancellations
// and stale handles are not failures from the host's point of view.
func (h *Hooks) report(err error) {
	if errors.IsRecoverable(err) {
		h.logger.Debug("embed interrupted", "error", err)
		return
	}

	kind := errors.Kind(err)
	if errors.GetSeverity(err) >= errors.SeverityError {
		h.logger.Error("embed request failed", "kind", kind, "error", err)
	} else {
		h.logger.Warn("embed request failed", "kind", kind, "error", err)
	}

	msg := err.Error()
	if !errors.IsUserFacing(err) {
		msg = internalFailure
	}
	h.bus.Publish(event.NewEmbedFailedEvent(kind, msg, errors.IsRetryable(err)))
}

// Wait blocks until all attach work has finished. A panic in attach work is
// logged rather than propagated to the host.
func (h *Hooks) Wait() {
	if r := h.wg.WaitAndRecover(); r != nil {
		h.logger.Error("attach work panicked", "panic", r.String())
	}
}

// Close unsubscribes from the bus, cancels attach work and waits for it.
func (h *Hooks) Close() {
	h.mu.Lock()
	ids := h.ids
	h.ids = nil
	h.mu.Unlock()

	for _, id := range ids {
		h.bus.Unsubscribe(id)
	}
	h.cancel()
	h.Wait()
}
