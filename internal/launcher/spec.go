package launcher

// Spec describes one launch attempt. It is treated as immutable once built.
type Spec struct {
	// Executable is the bare program name probed on the search path, or a
	// path containing a separator that is probed directly.
	Executable string

	// Extensions are appended to Executable, in order, for each directory.
	// An empty string probes the bare name.
	Extensions []string

	// Args are passed before the workspace argument.
	Args []string

	// Workspace, when set, is appended as the final argument.
	Workspace string

	// Dir overrides the working directory. Empty means the directory that
	// contains the resolved executable.
	Dir string
}

// Argv returns the argument list passed to the process, excluding argv[0].
func (s Spec) Argv() []string {
	argv := make([]string, 0, len(s.Args)+1)
	argv = append(argv, s.Args...)
	if s.Workspace != "" {
		argv = append(argv, s.Workspace)
	}
	return argv
}

// extensions returns the probe suffixes, falling back to the bare name.
func (s Spec) extensions() []string {
	if len(s.Extensions) == 0 {
		return []string{""}
	}
	return s.Extensions
}
