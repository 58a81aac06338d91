package event

import (
	"time"

	"github.com/Iron-Ham/codedock/internal/window"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "container.attached").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event types published on the bus.
const (
	TypeContainerAttached   = "container.attached"
	TypeContainerDetached   = "container.detached"
	TypeContainerResized    = "container.resized"
	TypeHostShutdown        = "host.shutdown"
	TypeEmbedFailed         = "embed.failed"
	TypeSessionStateChanged = "session.state_changed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Host Hooks
// -----------------------------------------------------------------------------

// ContainerAttachedEvent is published when the host's container surface is
// ready to receive the external window.
type ContainerAttachedEvent struct {
	baseEvent
	Container window.Handle
}

// NewContainerAttachedEvent creates a ContainerAttachedEvent.
func NewContainerAttachedEvent(container window.Handle) ContainerAttachedEvent {
	return ContainerAttachedEvent{
		baseEvent: newBaseEvent(TypeContainerAttached),
		Container: container,
	}
}

// ContainerDetachedEvent is published when the host closes or unloads the
// container. The external window is hidden, not destroyed.
type ContainerDetachedEvent struct {
	baseEvent
}

// NewContainerDetachedEvent creates a ContainerDetachedEvent.
func NewContainerDetachedEvent() ContainerDetachedEvent {
	return ContainerDetachedEvent{baseEvent: newBaseEvent(TypeContainerDetached)}
}

// ContainerResizedEvent is published on every container geometry change.
// Width and Height are informational; the resize path re-reads the client
// rectangle from the window system.
type ContainerResizedEvent struct {
	baseEvent
	Width  int
	Height int
}

// NewContainerResizedEvent creates a ContainerResizedEvent.
func NewContainerResizedEvent(width, height int) ContainerResizedEvent {
	return ContainerResizedEvent{
		baseEvent: newBaseEvent(TypeContainerResized),
		Width:     width,
		Height:    height,
	}
}

// HostShutdownEvent is published when the host is exiting.
type HostShutdownEvent struct {
	baseEvent
	Reason string
}

// NewHostShutdownEvent creates a HostShutdownEvent.
func NewHostShutdownEvent(reason string) HostShutdownEvent {
	return HostShutdownEvent{
		baseEvent: newBaseEvent(TypeHostShutdown),
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Notifications
// -----------------------------------------------------------------------------

// EmbedFailedEvent reports a non-fatal launch, locate or embed failure to
// the host.
type EmbedFailedEvent struct {
	baseEvent
	Kind      string // Taxonomy name, e.g. "ExecutableNotFound"
	Message   string
	Retryable bool
}

// NewEmbedFailedEvent creates an EmbedFailedEvent.
func NewEmbedFailedEvent(kind, message string, retryable bool) EmbedFailedEvent {
	return EmbedFailedEvent{
		baseEvent: newBaseEvent(TypeEmbedFailed),
		Kind:      kind,
		Message:   message,
		Retryable: retryable,
	}
}

// SessionStateChangedEvent is published after every session state change.
type SessionStateChangedEvent struct {
	baseEvent
	SessionID string
	From      string
	To        string
	Window    window.Handle
}

// NewSessionStateChangedEvent creates a SessionStateChangedEvent.
func NewSessionStateChangedEvent(sessionID, from, to string, win window.Handle) SessionStateChangedEvent {
	return SessionStateChangedEvent{
		baseEvent: newBaseEvent(TypeSessionStateChanged),
		SessionID: sessionID,
		From:      from,
		To:        to,
		Window:    win,
	}
}
