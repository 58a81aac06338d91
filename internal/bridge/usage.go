package bridge

import (
	"os"

	"golang.org/x/term"
)

// Interactive reports whether f is a terminal, meaning a person rather than
// a host process is typing commands.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Usage is the command reference printed for interactive sessions.
const Usage = `Commands (one JSON object per line):
  {"op":"attach","container":<handle>}   embed the editor into a container window
  {"op":"resize","width":W,"height":H}   fit the editor to the container again
  {"op":"detach"}                        hide the editor, keep it running
  {"op":"status"}                        print the current session
  {"op":"shutdown"}                      close the editor and exit
`
