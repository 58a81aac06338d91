package bridge

// Command operations accepted on the input stream.
const (
	OpAttach   = "attach"
	OpDetach   = "detach"
	OpResize   = "resize"
	OpShutdown = "shutdown"
	OpStatus   = "status"
)

// Notification types written to the output stream.
const (
	NoteState  = "state"
	NoteError  = "error"
	NoteStatus = "status"
)

// Command is one line of host input.
type Command struct {
	Op        string  `json:"op"`
	Container uintptr `json:"container,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// Notification is one line of output to the host.
type Notification struct {
	Type      string `json:"type"`
	Session   string `json:"session,omitempty"`
	From      string `json:"from,omitempty"`
	State     string `json:"state,omitempty"`
	Window    string `json:"window,omitempty"`
	Container string `json:"container,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
