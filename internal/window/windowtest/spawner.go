package windowtest

import (
	"fmt"
	"sync"

	"github.com/Iron-Ham/codedock/internal/launcher"
)

// Spawner is a fake launcher.Spawner. Each Spawn allocates a PID and calls
// OnSpawn so tests can register the windows the "process" will open.
type Spawner struct {
	reg *Registry

	// OnSpawn runs after a successful spawn, outside the Spawner lock.
	OnSpawn func(pid int, cmd launcher.Command)

	mu       sync.Mutex
	nextPID  int
	commands []launcher.Command
	procs    map[int]*Process
	killed   []int
	err      error
}

// NewSpawner returns a Spawner whose kills destroy windows in reg.
func NewSpawner(reg *Registry) *Spawner {
	return &Spawner{
		reg:     reg,
		nextPID: 4000,
		procs:   make(map[int]*Process),
	}
}

// FailWith makes subsequent spawns fail with err; nil restores success.
func (s *Spawner) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Spawn implements launcher.Spawner.
func (s *Spawner) Spawn(cmd launcher.Command) (launcher.Process, error) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return nil, err
	}
	s.nextPID++
	p := &Process{spawner: s, pid: s.nextPID, alive: true}
	s.procs[p.pid] = p
	hook := s.OnSpawn
	s.mu.Unlock()

	if hook != nil {
		hook(p.pid, cmd)
	}
	return p, nil
}

// Kill implements launcher.Spawner. It terminates a spawned process, and
// destroys every window owned by pid whether or not this Spawner started it.
func (s *Spawner) Kill(pid int) error {
	s.mu.Lock()
	s.killed = append(s.killed, pid)
	p, spawned := s.procs[pid]
	wasAlive := spawned && p.alive
	if spawned {
		p.alive = false
	}
	s.mu.Unlock()

	hadWindows := s.reg.DestroyProcess(pid)
	if !wasAlive && !hadWindows {
		return fmt.Errorf("process %d not found", pid)
	}
	return nil
}

// Exit simulates the process exiting on its own; its windows stay alive,
// as when a launcher stub hands off to another instance.
func (s *Spawner) Exit(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.procs[pid]; ok {
		p.alive = false
	}
}

// Spawns returns how many spawns were attempted.
func (s *Spawner) Spawns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands)
}

// Commands returns the spawn requests in order.
func (s *Spawner) Commands() []launcher.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]launcher.Command(nil), s.commands...)
}

// Killed returns the PIDs passed to Kill in order.
func (s *Spawner) Killed() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.killed...)
}

// Process is a fake launcher.Process.
type Process struct {
	spawner *Spawner
	pid     int
	alive   bool
}

// PID implements launcher.Process.
func (p *Process) PID() int { return p.pid }

// Alive implements launcher.Process.
func (p *Process) Alive() bool {
	p.spawner.mu.Lock()
	defer p.spawner.mu.Unlock()
	return p.alive
}

// Kill implements launcher.Process.
func (p *Process) Kill() error {
	if !p.Alive() {
		return nil
	}
	return p.spawner.Kill(p.pid)
}

var _ launcher.Spawner = (*Spawner)(nil)
