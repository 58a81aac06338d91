package windowtest

import (
	"fmt"
	"testing"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/launcher"
	"github.com/Iron-Ham/codedock/internal/window"
)

func TestRegistry_TopLevelFilters(t *testing.T) {
	reg := NewRegistry()
	visible := reg.AddTopLevel(10, "Visual Studio Code")
	reg.Add(Window{PID: 10, Title: "", Visible: true})
	reg.Add(Window{PID: 10, Title: "hidden", Visible: false})
	container := reg.AddContainer(800, 600)
	reg.Add(Window{PID: 10, Title: "child", Visible: true, Parent: container})
	dead := reg.AddTopLevel(11, "closed")
	reg.Destroy(dead)

	infos, err := reg.TopLevel()
	if err != nil {
		t.Fatalf("TopLevel() error = %v", err)
	}
	if len(infos) != 1 || infos[0].Handle != visible {
		t.Errorf("TopLevel() = %+v, want only %v", infos, visible)
	}
}

func TestRegistry_AppearAfter(t *testing.T) {
	reg := NewRegistry()
	reg.Add(Window{PID: 1, Title: "late", Visible: true, AppearAfter: 2})

	for i := 1; i <= 3; i++ {
		infos, _ := reg.TopLevel()
		if want := i > 2; (len(infos) == 1) != want {
			t.Errorf("enumeration %d: visible = %v, want %v", i, len(infos) == 1, want)
		}
	}
	if reg.Enumerations() != 3 {
		t.Errorf("Enumerations() = %d, want 3", reg.Enumerations())
	}
}

func TestRegistry_StaleHandles(t *testing.T) {
	reg := NewRegistry()
	h := reg.AddTopLevel(1, "x")
	reg.Destroy(h)

	if reg.Alive(h) {
		t.Error("destroyed window reported alive")
	}
	if err := reg.SetVisible(h, true); !errors.Is(err, errors.ErrStaleHandle) {
		t.Errorf("SetVisible() = %v, want ErrStaleHandle", err)
	}
	if _, err := reg.ProcessID(window.Handle(0xdead)); !errors.Is(err, errors.ErrStaleHandle) {
		t.Errorf("ProcessID(unknown) = %v, want ErrStaleHandle", err)
	}
}

func TestRegistry_SetParentRejectsDeadParent(t *testing.T) {
	reg := NewRegistry()
	h := reg.AddTopLevel(1, "x")
	c := reg.AddContainer(10, 10)
	reg.Destroy(c)

	if err := reg.SetParent(h, c); !errors.Is(err, errors.ErrEmbedFailed) {
		t.Errorf("SetParent(dead) = %v, want ErrEmbedFailed", err)
	}
}

func TestRegistry_ChildrenAndCalls(t *testing.T) {
	reg := NewRegistry()
	p := reg.AddTopLevel(1, "p")
	a := reg.Add(Window{Parent: p})
	b := reg.Add(Window{Parent: p})

	kids, err := reg.Children(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(kids) != 2 || kids[0] != a || kids[1] != b {
		t.Errorf("Children() = %v, want [%v %v]", kids, a, b)
	}
	if reg.Calls("Children") != 1 {
		t.Errorf("Calls(Children) = %d, want 1", reg.Calls("Children"))
	}
}

func TestRegistry_Fail(t *testing.T) {
	reg := NewRegistry()
	boom := fmt.Errorf("boom")
	reg.Fail("TopLevel", boom)
	if _, err := reg.TopLevel(); err != boom {
		t.Errorf("TopLevel() = %v, want injected error", err)
	}
	reg.Fail("TopLevel", nil)
	if _, err := reg.TopLevel(); err != nil {
		t.Errorf("TopLevel() after clear = %v", err)
	}
}

func TestSpawner_KillDestroysWindows(t *testing.T) {
	reg := NewRegistry()
	sp := NewSpawner(reg)

	var win window.Handle
	sp.OnSpawn = func(pid int, _ launcher.Command) {
		win = reg.AddTopLevel(pid, "editor")
	}

	proc, err := sp.Spawn(launcher.Command{Path: "/bin/code"})
	if err != nil {
		t.Fatal(err)
	}
	if !proc.Alive() || !reg.Alive(win) {
		t.Fatal("spawned process and its window should be alive")
	}

	if err := proc.Kill(); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}
	if proc.Alive() || reg.Alive(win) {
		t.Error("kill should end the process and its windows")
	}
	if err := proc.Kill(); err != nil {
		t.Errorf("second Kill() = %v, want nil", err)
	}
	if err := sp.Kill(99999); err == nil {
		t.Error("Kill(unknown pid) should fail")
	}
}

func TestSpawner_FailWith(t *testing.T) {
	sp := NewSpawner(NewRegistry())
	sp.FailWith(fmt.Errorf("denied"))
	if _, err := sp.Spawn(launcher.Command{}); err == nil {
		t.Fatal("Spawn() should fail")
	}
	if sp.Spawns() != 1 {
		t.Errorf("Spawns() = %d, want 1", sp.Spawns())
	}
}
