package lifecycle

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/codedock/internal/embedder"
	"github.com/Iron-Ham/codedock/internal/launcher"
	"github.com/Iron-Ham/codedock/internal/locator"
	"github.com/Iron-Ham/codedock/internal/session"
	"github.com/Iron-Ham/codedock/internal/window"
	"github.com/Iron-Ham/codedock/internal/window/windowtest"
)

const editorTitle = "Workspace - Visual Studio Code"

// harness wires a Controller against the in-memory window system. By
// default every spawn opens one editor window that becomes visible on the
// tenth enumeration after the spawn.
type harness struct {
	reg       *windowtest.Registry
	spawner   *windowtest.Spawner
	registry  *session.Registry
	ctrl      *Controller
	resize    *ResizeSynchronizer
	container window.Handle
	windows   []window.Handle
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	installed bool
	policy    locator.Policy
	ownerPID  func(spawned int) int
	noWindow  bool
}

func withoutExecutable() harnessOption {
	return func(c *harnessConfig) { c.installed = false }
}

func withPolicy(p locator.Policy) harnessOption {
	return func(c *harnessConfig) { c.policy = p }
}

// withHandoff makes the editor window belong to a different process than
// the one spawned, as when a launcher stub hands off to a running instance.
func withHandoff(pid int) harnessOption {
	return func(c *harnessConfig) { c.ownerPID = func(int) int { return pid } }
}

func withoutWindow() harnessOption {
	return func(c *harnessConfig) { c.noWindow = true }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	cfg := harnessConfig{
		installed: true,
		policy:    locator.Policy{Interval: time.Millisecond, MaxAttempts: 10},
		ownerPID:  func(spawned int) int { return spawned },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	bin := filepath.Join("/", "Programs", "Microsoft VS Code", "bin")
	fs := afero.NewMemMapFs()
	if cfg.installed {
		if err := afero.WriteFile(fs, filepath.Join(bin, "code.cmd"), []byte("@echo off"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	h := &harness{
		reg:      windowtest.NewRegistry(),
		registry: session.NewRegistry(),
	}
	h.spawner = windowtest.NewSpawner(h.reg)
	if !cfg.noWindow {
		h.spawner.OnSpawn = func(pid int, _ launcher.Command) {
			win := h.reg.Add(windowtest.Window{
				PID:         cfg.ownerPID(pid),
				Title:       editorTitle,
				Visible:     true,
				Style:       window.Decorations,
				Bounds:      window.Rect{X: 20, Y: 20, Width: 1280, Height: 960},
				AppearAfter: h.reg.Enumerations() + 9,
			})
			h.windows = append(h.windows, win)
		}
	}

	l := launcher.New(launcher.NewResolver(fs, bin), h.spawner, nil)
	loc := locator.New(h.reg, cfg.policy, nil)
	emb := embedder.New(h.reg, embedder.DefaultLimits(), nil)

	h.ctrl = NewController(h.reg, l, loc, emb, h.registry, Options{
		Launch: launcher.Spec{
			Executable: "code",
			Extensions: []string{".cmd", ".exe"},
			Args:       []string{"--new-window", "--disable-workspace-trust"},
			Workspace:  "/work/project",
		},
		Title: "Visual Studio Code",
	}, nil)
	h.resize = NewResizeSynchronizer(h.reg, h.registry, nil)
	h.container = h.reg.AddContainer(800, 600)
	return h
}

func (h *harness) window(t *testing.T) windowtest.Window {
	t.Helper()
	s, ok := h.registry.Snapshot()
	if !ok || s.Window == 0 {
		t.Fatal("no embedded window in session")
	}
	w, _ := h.reg.Get(s.Window)
	return w
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
