package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/launcher"
	"github.com/Iron-Ham/codedock/internal/window"
)

// State is the lifecycle state of the embedding session.
type State int

const (
	// Uninitialized means no window is embedded. A launched process may
	// still be cached from an earlier attempt.
	Uninitialized State = iota
	// Embedded means the window is parented into the container and shown.
	Embedded
	// Hidden means the window is still parented but hidden after a detach.
	Hidden
	// Terminated means the process was killed on shutdown.
	Terminated
)

// String returns the state name used in logs and host notifications.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Embedded:
		return "Embedded"
	case Hidden:
		return "Hidden"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// ErrInvalidTransition is returned when a state change is not allowed.
var ErrInvalidTransition = errors.New("invalid session state transition")

var transitions = map[State][]State{
	Uninitialized: {Embedded, Terminated},
	Embedded:      {Embedded, Hidden, Uninitialized, Terminated},
	Hidden:        {Embedded, Hidden, Uninitialized, Terminated},
	Terminated:    {},
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Session is a snapshot of the embedding session.
type Session struct {
	ID        string
	State     State
	Process   launcher.Process
	Window    window.Handle
	Container window.Handle
	UpdatedAt time.Time
}

// Transition describes one state change.
type Transition struct {
	SessionID string
	From      State
	To        State
	Window    window.Handle
}

// Registry owns the single session. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	current   *Session
	observers []func(Transition)
	now       func() time.Time
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// OnTransition registers fn to run after every state change. Observers run
// on the goroutine that made the change, outside the registry lock.
func (r *Registry) OnTransition(fn func(Transition)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Snapshot returns a copy of the session and whether one exists.
func (r *Registry) Snapshot() (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Session{}, false
	}
	return *r.current, true
}

// State returns the current state, Uninitialized when no session exists.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Uninitialized
	}
	return r.current.State
}

// Begin returns the session an embed request works on, creating it lazily.
// A Terminated session is replaced so the next embed starts a new cycle.
func (r *Registry) Begin() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.State == Terminated {
		r.current = &Session{
			ID:        newID(),
			State:     Uninitialized,
			UpdatedAt: r.now(),
		}
	}
	return *r.current
}

// SetProcess caches the launched process on the current session.
func (r *Registry) SetProcess(p launcher.Process) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.State == Terminated {
		return errors.Wrap(ErrInvalidTransition, "no active session")
	}
	r.current.Process = p
	r.current.UpdatedAt = r.now()
	return nil
}

// MarkEmbedded records win as embedded in container.
func (r *Registry) MarkEmbedded(win, container window.Handle) error {
	if win == 0 {
		return errors.NewValidationError("embedded window handle cannot be zero").WithField("window")
	}
	return r.move(Embedded, func(s *Session) {
		s.Window = win
		s.Container = container
	})
}

// MarkHidden records that the embedded window was hidden on detach.
func (r *Registry) MarkHidden() error {
	return r.move(Hidden, nil)
}

// ForgetWindow drops a window that is no longer valid and returns to
// Uninitialized. The cached process is kept so a later embed can locate a
// replacement window without relaunching.
func (r *Registry) ForgetWindow() error {
	return r.move(Uninitialized, func(s *Session) {
		s.Window = 0
		s.Container = 0
	})
}

// Terminate clears all handles and marks the session Terminated. It is a
// no-op without a session or when already terminated.
func (r *Registry) Terminate() {
	_ = r.move(Terminated, func(s *Session) {
		s.Process = nil
		s.Window = 0
		s.Container = 0
	})
}

func (r *Registry) move(to State, mutate func(*Session)) error {
	r.mu.Lock()
	if r.current == nil {
		r.mu.Unlock()
		if to == Terminated {
			return nil
		}
		return errors.Wrap(ErrInvalidTransition, "no active session")
	}

	from := r.current.State
	if from == Terminated && to == Terminated {
		r.mu.Unlock()
		return nil
	}
	if !allowed(from, to) {
		r.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}

	if mutate != nil {
		mutate(r.current)
	}
	r.current.State = to
	r.current.UpdatedAt = r.now()

	tr := Transition{SessionID: r.current.ID, From: from, To: to, Window: r.current.Window}
	observers := slices.Clone(r.observers)
	r.mu.Unlock()

	if from != to {
		for _, fn := range observers {
			fn(tr)
		}
	}
	return nil
}

func newID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d-%d", os.Getpid(), time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
