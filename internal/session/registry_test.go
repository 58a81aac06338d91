package session

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/launcher"
)

type stubProcess struct{ pid int }

func (p stubProcess) PID() int    { return p.pid }
func (p stubProcess) Alive() bool { return true }
func (p stubProcess) Kill() error { return nil }

var _ launcher.Process = stubProcess{}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Uninitialized, "Uninitialized"},
		{Embedded, "Embedded"},
		{Hidden, "Hidden"},
		{Terminated, "Terminated"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Snapshot(); ok {
		t.Error("new registry should have no session")
	}
	if r.State() != Uninitialized {
		t.Errorf("State() = %v, want uninitialized", r.State())
	}
	if err := r.MarkHidden(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("MarkHidden() without session = %v, want ErrInvalidTransition", err)
	}
	r.Terminate()
	if _, ok := r.Snapshot(); ok {
		t.Error("Terminate without a session must not create one")
	}
}

func TestRegistry_Cycle(t *testing.T) {
	r := NewRegistry()
	var seen []Transition
	r.OnTransition(func(tr Transition) { seen = append(seen, tr) })

	first := r.Begin()
	if first.State != Uninitialized || first.ID == "" {
		t.Fatalf("Begin() = %+v", first)
	}
	if again := r.Begin(); again.ID != first.ID {
		t.Error("Begin() must reuse the live session")
	}

	if err := r.SetProcess(stubProcess{pid: 7}); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkEmbedded(0x10, 0x20); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkHidden(); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkEmbedded(0x10, 0x30); err != nil {
		t.Fatal(err)
	}

	s, _ := r.Snapshot()
	if s.State != Embedded || s.Window != 0x10 || s.Container != 0x30 || s.Process.PID() != 7 {
		t.Errorf("snapshot = %+v", s)
	}

	r.Terminate()
	s, _ = r.Snapshot()
	if s.State != Terminated || s.Window != 0 || s.Container != 0 || s.Process != nil {
		t.Errorf("after Terminate snapshot = %+v, want cleared", s)
	}

	next := r.Begin()
	if next.ID == first.ID || next.State != Uninitialized {
		t.Errorf("Begin() after Terminate = %+v, want a fresh session", next)
	}

	want := []State{Embedded, Hidden, Embedded, Terminated}
	if len(seen) != len(want) {
		t.Fatalf("observed %d transitions, want %d", len(seen), len(want))
	}
	for i, to := range want {
		if seen[i].To != to {
			t.Errorf("transition %d to %v, want %v", i, seen[i].To, to)
		}
	}
}

func TestRegistry_WindowInvariant(t *testing.T) {
	r := NewRegistry()
	r.Begin()

	if err := r.MarkEmbedded(0, 0x20); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("MarkEmbedded(0) = %v, want validation error", err)
	}

	_ = r.SetProcess(stubProcess{pid: 1})
	_ = r.MarkEmbedded(0x10, 0x20)
	if err := r.ForgetWindow(); err != nil {
		t.Fatal(err)
	}

	s, _ := r.Snapshot()
	if s.State != Uninitialized || s.Window != 0 {
		t.Errorf("after ForgetWindow = %+v", s)
	}
	if s.Process == nil {
		t.Error("ForgetWindow must keep the cached process")
	}
}

func TestRegistry_InvalidTransitions(t *testing.T) {
	r := NewRegistry()
	r.Begin()

	err := r.MarkHidden()
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Uninitialized -> Hidden = %v, want ErrInvalidTransition", err)
	}
	if err != nil && !strings.Contains(err.Error(), "Uninitialized -> Hidden") {
		t.Errorf("error %q should name the rejected transition", err)
	}

	r.Terminate()
	if err := r.MarkEmbedded(0x1, 0x2); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Terminated -> Embedded = %v, want ErrInvalidTransition", err)
	}
	if err := r.SetProcess(stubProcess{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SetProcess on terminated = %v, want ErrInvalidTransition", err)
	}
	r.Terminate()
}

func TestRegistry_SelfTransitionNotObserved(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.OnTransition(func(Transition) { calls++ })

	r.Begin()
	_ = r.MarkEmbedded(0x1, 0x2)
	_ = r.MarkEmbedded(0x1, 0x3)
	if calls != 1 {
		t.Errorf("observer calls = %d, want 1", calls)
	}
}


func TestRegistry_ObserversMayReadAndSubscribe(t *testing.T) {
	r := NewRegistry()
	var states []State
	late := 0
	r.OnTransition(func(tr Transition) {
		states = append(states, r.State())
		if tr.To == Embedded {
			r.OnTransition(func(Transition) { late++ })
		}
	})

	r.Begin()
	if err := r.MarkEmbedded(0x1, 0x2); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkHidden(); err != nil {
		t.Fatal(err)
	}

	if len(states) != 2 || states[0] != Embedded || states[1] != Hidden {
		t.Errorf("observed states = %v, want [Embedded Hidden]", states)
	}
	if late != 1 {
		t.Errorf("observer added during a transition ran %d times, want 1", late)
	}
}
