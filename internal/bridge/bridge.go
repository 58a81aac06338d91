package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/event"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/session"
	"github.com/Iron-Ham/codedock/internal/window"
)

// Bridge translates host commands into bus events and bus notifications
// into host output.
type Bridge struct {
	bus    *event.Bus
	logger *logging.Logger
	status StatusFunc

	outMu sync.Mutex
	enc   *json.Encoder

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	ids      []string
	started  bool
	done     chan struct{}
	doneOnce sync.Once
	err      error
}

// New creates a Bridge that writes notifications to out.
//
// The bus and out must be non-nil. Passing nil will panic early to surface
// wiring bugs immediately.
func New(bus *event.Bus, out io.Writer, opts ...Option) *Bridge {
	if bus == nil {
		panic("bridge: event.Bus must not be nil")
	}
	if out == nil {
		panic("bridge: output writer must not be nil")
	}

	cfg := &config{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}
	if cfg.status == nil {
		cfg.status = func() (session.Session, bool) { return session.Session{}, false }
	}

	return &Bridge{
		bus:    bus,
		logger: cfg.logger.WithPhase("bridge"),
		status: cfg.status,
		enc:    json.NewEncoder(out),
		done:   make(chan struct{}),
	}
}

// Start subscribes to notifications and begins reading commands from in.
// A Bridge is started at most once. Start returns immediately and commands
// are handled on a background goroutine. Done is closed when in reaches
// EOF, a shutdown command is handled, or ctx is canceled.
func (b *Bridge) Start(ctx context.Context, in io.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx != nil {
		return fmt.Errorf("bridge: already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	b.ctx = ctx
	b.cancel = cancel
	b.started = true

	b.ids = append(b.ids,
		b.bus.Subscribe(event.TypeSessionStateChanged, b.onStateChanged),
		b.bus.Subscribe(event.TypeEmbedFailed, b.onEmbedFailed),
	)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	// The reader is not tracked by wg: a blocking read on a pipe cannot be
	// interrupted, and it exits on its own once the host closes the stream.
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.commandLoop(ctx, lines, scanErr)
	}()

	return nil
}

func (b *Bridge) commandLoop(ctx context.Context, lines <-chan []byte, scanErr <-chan error) {
	defer b.finish()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					b.setErr(fmt.Errorf("bridge: read commands: %w", err))
					b.logger.Error("command stream failed", "error", err)
				}
				b.logger.Info("command stream closed")
				b.bus.Publish(event.NewHostShutdownEvent("input closed"))
				return
			}
			if b.handleLine(line) {
				return
			}
		}
	}
}

// handleLine processes one input line and reports whether the bridge
// should stop reading.
func (b *Bridge) handleLine(line []byte) bool {
	if len(line) == 0 {
		return false
	}

	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		b.writeError(errors.NewValidationError("malformed command").WithValue(string(line)))
		return false
	}
	return b.Dispatch(cmd)
}

// Dispatch handles one command and reports whether it ends the session.
func (b *Bridge) Dispatch(cmd Command) bool {
	log := b.logger.With("op", cmd.Op)

	switch cmd.Op {
	case OpAttach:
		if cmd.Container == 0 {
			b.writeError(errors.NewValidationError("attach requires a container handle").WithField("container"))
			return false
		}
		log.Debug("attach requested", "container", window.Handle(cmd.Container).String())
		b.bus.Publish(event.NewContainerAttachedEvent(window.Handle(cmd.Container)))

	case OpDetach:
		b.bus.Publish(event.NewContainerDetachedEvent())

	case OpResize:
		if cmd.Width < 0 || cmd.Height < 0 {
			b.writeError(errors.NewValidationError("resize dimensions must be non-negative").
				WithValue(fmt.Sprintf("%dx%d", cmd.Width, cmd.Height)))
			return false
		}
		b.bus.Publish(event.NewContainerResizedEvent(cmd.Width, cmd.Height))

	case OpStatus:
		b.writeStatus()

	case OpShutdown:
		reason := cmd.Reason
		if reason == "" {
			reason = "host request"
		}
		log.Info("shutdown requested", "reason", reason)
		b.bus.Publish(event.NewHostShutdownEvent(reason))
		return true

	default:
		b.writeError(errors.NewValidationError("unknown op").WithField("op").WithValue(cmd.Op))
	}
	return false
}

func (b *Bridge) onStateChanged(e event.Event) {
	changed, ok := e.(event.SessionStateChangedEvent)
	if !ok {
		return
	}
	note := Notification{
		Type:    NoteState,
		Session: changed.SessionID,
		From:    changed.From,
		State:   changed.To,
	}
	if changed.Window != 0 {
		note.Window = changed.Window.String()
	}
	b.write(note)
}

func (b *Bridge) onEmbedFailed(e event.Event) {
	failed, ok := e.(event.EmbedFailedEvent)
	if !ok {
		return
	}
	b.write(Notification{
		Type:      NoteError,
		Kind:      failed.Kind,
		Message:   failed.Message,
		Retryable: failed.Retryable,
	})
}

func (b *Bridge) writeStatus() {
	note := Notification{Type: NoteStatus, State: session.Uninitialized.String()}
	if sess, ok := b.status(); ok {
		note.Session = sess.ID
		note.State = sess.State.String()
		if sess.Window != 0 {
			note.Window = sess.Window.String()
		}
		if sess.Container != 0 {
			note.Container = sess.Container.String()
		}
	}
	b.write(note)
}

func (b *Bridge) writeError(err error) {
	b.write(Notification{
		Type:      NoteError,
		Kind:      errors.Kind(err),
		Message:   err.Error(),
		Retryable: errors.IsRetryable(err),
	})
}

func (b *Bridge) write(note Notification) {
	b.outMu.Lock()
	defer b.outMu.Unlock()

	if err := b.enc.Encode(note); err != nil {
		b.logger.Warn("failed to write notification", "type", note.Type, "error", err)
	}
}

func (b *Bridge) finish() {
	b.doneOnce.Do(func() { close(b.done) })
}

func (b *Bridge) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Done is closed once the bridge stops reading commands.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Err returns the read error that ended the command stream, if any.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Stop stops reading commands, unsubscribes from the bus and waits for the
// command loop to exit. It is safe to call multiple times.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return
	}
	b.cancel()
	ids := b.ids
	b.ids = nil
	b.mu.Unlock()

	b.wg.Wait()

	for _, id := range ids {
		b.bus.Unsubscribe(id)
	}

	b.mu.Lock()
	b.started = false
	b.mu.Unlock()
}
