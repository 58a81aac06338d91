package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/logging"
)

// Command is a fully resolved spawn request.
type Command struct {
	Path string
	Args []string
	Dir  string
}

// Process is a reference to a launched external process.
type Process interface {
	// PID returns the operating system process identifier.
	PID() int

	// Alive reports whether the process has not yet exited.
	Alive() bool

	// Kill force-terminates the process. Killing an exited process is not
	// an error.
	Kill() error
}

// Spawner starts and kills operating system processes.
type Spawner interface {
	Spawn(cmd Command) (Process, error)

	// Kill force-terminates the process with the given PID, which need not
	// have been started by this Spawner.
	Kill(pid int) error
}

// Launcher resolves a Spec and spawns it.
type Launcher struct {
	resolver *Resolver
	spawner  Spawner
	logger   *logging.Logger
}

// New creates a Launcher. A nil logger discards output.
func New(resolver *Resolver, spawner Spawner, logger *logging.Logger) *Launcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Launcher{
		resolver: resolver,
		spawner:  spawner,
		logger:   logger.WithPhase("launch"),
	}
}

// Resolve exposes the resolver for diagnostics.
func (l *Launcher) Resolve(spec Spec) (string, error) {
	return l.resolver.Resolve(spec)
}

// Launch resolves spec and starts the process. The spawn itself is not
// retried: a rejected spawn returns ErrLaunchFailed.
func (l *Launcher) Launch(ctx context.Context, spec Spec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCanceled, err.Error())
	}

	path, err := l.resolver.Resolve(spec)
	if err != nil {
		l.logger.Warn("executable not resolved", "executable", spec.Executable, "error", err)
		return nil, err
	}

	dir := spec.Dir
	if dir == "" {
		dir = filepath.Dir(path)
	}

	cmd := Command{Path: path, Args: spec.Argv(), Dir: dir}
	proc, err := l.spawner.Spawn(cmd)
	if err != nil {
		l.logger.Error("spawn rejected", "path", path, "dir", dir, "error", err)
		return nil, errors.NewLaunchError(err.Error(), errors.ErrLaunchFailed).
			WithExecutable(path).
			WithDir(dir)
	}

	l.logger.Info("launched external process", "path", path, "pid", proc.PID(), "args", cmd.Args)
	return proc, nil
}

// KillPID force-terminates pid. Errors are returned for logging only;
// termination is best effort.
func (l *Launcher) KillPID(pid int) error {
	if pid <= 0 {
		return errors.NewValidationError("invalid pid").WithField("pid").WithValue(pid)
	}
	return l.spawner.Kill(pid)
}

// ExecSpawner starts processes with os/exec, hidden and detached from the
// caller's console.
type ExecSpawner struct{}

// Spawn starts cmd without waiting for it.
func (ExecSpawner) Spawn(c Command) (Process, error) {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.SysProcAttr = hiddenProcAttr()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", c.Path, err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go p.wait()
	return p, nil
}

// Kill terminates an arbitrary process by PID.
func (ExecSpawner) Kill(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

type execProcess struct {
	cmd      *exec.Cmd
	done     chan struct{}
	killOnce sync.Once
	killErr  error
}

// wait reaps the child so Alive can answer without signalling.
func (p *execProcess) wait() {
	_ = p.cmd.Wait()
	close(p.done)
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *execProcess) Kill() error {
	if !p.Alive() {
		return nil
	}
	p.killOnce.Do(func() {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.killErr = err
		}
	})
	return p.killErr
}
