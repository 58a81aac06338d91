// Package launcher resolves the external editor executable on the search path
// and starts it without a console window.
//
// Resolution and spawning are separate so callers (and tests) can inject the
// filesystem through afero and the spawn mechanism through Spawner:
//
//	l := launcher.New(launcher.NewResolver(afero.NewOsFs(), os.Getenv("PATH")), launcher.ExecSpawner{}, logger)
//	proc, err := l.Launch(ctx, spec)
//	if errors.Is(err, errors.ErrExecutableNotFound) {
//	    // configuration problem, report to the host
//	}
//
// A returned Process is owned by the caller. It becomes invalid once the
// external process exits; Alive reports that without blocking.
package launcher
