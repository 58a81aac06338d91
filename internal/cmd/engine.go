package cmd

import (
	"context"
	"io"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/codedock/internal/bridge"
	"github.com/Iron-Ham/codedock/internal/config"
	"github.com/Iron-Ham/codedock/internal/embedder"
	"github.com/Iron-Ham/codedock/internal/event"
	"github.com/Iron-Ham/codedock/internal/launcher"
	"github.com/Iron-Ham/codedock/internal/lifecycle"
	"github.com/Iron-Ham/codedock/internal/locator"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/session"
	"github.com/Iron-Ham/codedock/internal/window"
)

// platform is what the engine needs from the operating system.
type platform struct {
	backend window.Backend
	spawner launcher.Spawner
	fs      afero.Fs
	pathEnv string
}

// engine is one fully wired embedding session.
type engine struct {
	logger   *logging.Logger
	bus      *event.Bus
	registry *session.Registry
	ctrl     *lifecycle.Controller
	resize   *lifecycle.ResizeSynchronizer
}

func newEngine(cfg *config.Config, p platform, logger *logging.Logger) *engine {
	if logger == nil {
		logger = logging.NopLogger()
	}

	bus := event.NewBus()
	bus.SetLogger(logger)

	registry := session.NewRegistry()
	l := launcher.New(launcher.NewResolver(p.fs, p.pathEnv), p.spawner, logger)
	loc := locator.New(p.backend, cfg.Locate.Policy(), logger)
	emb := embedder.New(p.backend, cfg.Embed.Limits(), logger)

	ctrl := lifecycle.NewController(p.backend, l, loc, emb, registry, lifecycle.Options{
		Launch: cfg.Launch.Spec(),
		Title:  cfg.Locate.Title,
	}, logger)

	return &engine{
		logger:   logger,
		bus:      bus,
		registry: registry,
		ctrl:     ctrl,
		resize:   lifecycle.NewResizeSynchronizer(p.backend, registry, logger),
	}
}

// serve drives the session from host commands on in until the host shuts
// down, in closes, or ctx ends. A non-zero container is attached before
// the first command is read. The editor is always shut down on return.
func (e *engine) serve(ctx context.Context, in io.Reader, out io.Writer, container window.Handle) error {
	trace := e.bus.SubscribeAll(func(ev event.Event) {
		e.logger.Debug("event", "type", ev.EventType())
	})
	hooks := lifecycle.Bind(ctx, e.bus, e.ctrl, e.resize, e.logger)

	br := bridge.New(e.bus, out,
		bridge.WithLogger(e.logger),
		bridge.WithStatus(e.registry.Snapshot),
	)
	if err := br.Start(ctx, in); err != nil {
		e.close(hooks, nil, trace)
		return err
	}

	if container != 0 {
		e.bus.Publish(event.NewContainerAttachedEvent(container))
	}

	<-br.Done()

	// Input EOF and the shutdown command publish their own host.shutdown;
	// cancellation does not.
	if ctx.Err() != nil {
		e.bus.Publish(event.NewHostShutdownEvent("interrupted"))
	}
	e.close(hooks, br, trace)
	return br.Err()
}

// close detaches everything serve subscribed to the bus.
func (e *engine) close(hooks *lifecycle.Hooks, br *bridge.Bridge, trace string) {
	if br != nil {
		br.Stop()
	}
	hooks.Close()
	e.bus.Unsubscribe(trace)

	if n := e.bus.SubscriptionCount(); n != 0 {
		e.logger.Warn("event subscriptions left after session", "count", n)
	}
}
