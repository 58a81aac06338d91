package launcher

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/codedock/internal/errors"
)

type fakeProcess struct {
	pid   int
	alive bool
}

func (p *fakeProcess) PID() int    { return p.pid }
func (p *fakeProcess) Alive() bool { return p.alive }
func (p *fakeProcess) Kill() error { p.alive = false; return nil }

type fakeSpawner struct {
	commands []Command
	killed   []int
	err      error
}

func (s *fakeSpawner) Spawn(cmd Command) (Process, error) {
	s.commands = append(s.commands, cmd)
	if s.err != nil {
		return nil, s.err
	}
	return &fakeProcess{pid: 100 + len(s.commands), alive: true}, nil
}

func (s *fakeSpawner) Kill(pid int) error {
	s.killed = append(s.killed, pid)
	return nil
}

func newTestLauncher(t *testing.T, spawner Spawner) (*Launcher, string) {
	t.Helper()
	bin := filepath.Join("/", "tools", "vscode", "bin")
	fs := afero.NewMemMapFs()
	writeFile(t, fs, filepath.Join(bin, "code.cmd"))
	return New(NewResolver(fs, bin), spawner, nil), bin
}

func TestLauncher_Launch(t *testing.T) {
	spawner := &fakeSpawner{}
	l, bin := newTestLauncher(t, spawner)

	spec := Spec{
		Executable: "code",
		Extensions: []string{".cmd", ".exe"},
		Args:       []string{"--new-window", "--disable-workspace-trust"},
		Workspace:  "/work/project",
	}

	proc, err := l.Launch(context.Background(), spec)
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if proc.PID() != 101 {
		t.Errorf("PID() = %d, want 101", proc.PID())
	}
	if len(spawner.commands) != 1 {
		t.Fatalf("spawned %d times, want 1", len(spawner.commands))
	}

	cmd := spawner.commands[0]
	if cmd.Path != filepath.Join(bin, "code.cmd") {
		t.Errorf("Path = %q", cmd.Path)
	}
	if cmd.Dir != bin {
		t.Errorf("Dir = %q, want executable directory %q", cmd.Dir, bin)
	}
	wantArgs := []string{"--new-window", "--disable-workspace-trust", "/work/project"}
	if fmt.Sprint(cmd.Args) != fmt.Sprint(wantArgs) {
		t.Errorf("Args = %v, want %v", cmd.Args, wantArgs)
	}
}

func TestLauncher_DirOverride(t *testing.T) {
	spawner := &fakeSpawner{}
	l, _ := newTestLauncher(t, spawner)

	if _, err := l.Launch(context.Background(), Spec{Executable: "code", Extensions: []string{".cmd"}, Dir: "/elsewhere"}); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if spawner.commands[0].Dir != "/elsewhere" {
		t.Errorf("Dir = %q, want /elsewhere", spawner.commands[0].Dir)
	}
}

func TestLauncher_NotFoundDoesNotSpawn(t *testing.T) {
	spawner := &fakeSpawner{}
	l, _ := newTestLauncher(t, spawner)

	_, err := l.Launch(context.Background(), Spec{Executable: "cursor", Extensions: []string{".cmd"}})
	if !errors.Is(err, errors.ErrExecutableNotFound) {
		t.Fatalf("Launch() error = %v, want ErrExecutableNotFound", err)
	}
	if len(spawner.commands) != 0 {
		t.Error("spawner must not be called when resolution fails")
	}
}

func TestLauncher_SpawnRejected(t *testing.T) {
	spawner := &fakeSpawner{err: fmt.Errorf("access denied")}
	l, _ := newTestLauncher(t, spawner)

	_, err := l.Launch(context.Background(), Spec{Executable: "code", Extensions: []string{".cmd"}})
	if !errors.Is(err, errors.ErrLaunchFailed) {
		t.Fatalf("Launch() error = %v, want ErrLaunchFailed", err)
	}
	if len(spawner.commands) != 1 {
		t.Errorf("spawn attempted %d times, want exactly 1", len(spawner.commands))
	}
}

func TestLauncher_CanceledContext(t *testing.T) {
	spawner := &fakeSpawner{}
	l, _ := newTestLauncher(t, spawner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Launch(ctx, Spec{Executable: "code", Extensions: []string{".cmd"}}); !errors.Is(err, errors.ErrCanceled) {
		t.Errorf("Launch() error = %v, want ErrCanceled", err)
	}
	if len(spawner.commands) != 0 {
		t.Error("spawner must not be called after cancellation")
	}
}

func TestLauncher_KillPID(t *testing.T) {
	spawner := &fakeSpawner{}
	l, _ := newTestLauncher(t, spawner)

	if err := l.KillPID(0); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("KillPID(0) = %v, want ErrInvalidInput", err)
	}
	if err := l.KillPID(4242); err != nil {
		t.Fatalf("KillPID() error = %v", err)
	}
	if len(spawner.killed) != 1 || spawner.killed[0] != 4242 {
		t.Errorf("killed = %v, want [4242]", spawner.killed)
	}
}

func TestSpec_Argv(t *testing.T) {
	s := Spec{Args: []string{"-n"}}
	if got := s.Argv(); len(got) != 1 {
		t.Errorf("Argv() without workspace = %v", got)
	}
	s.Workspace = "/w"
	if got := s.Argv(); len(got) != 2 || got[1] != "/w" {
		t.Errorf("Argv() = %v, want workspace last", got)
	}
	if len(s.Args) != 1 {
		t.Error("Argv must not modify Args")
	}
}
