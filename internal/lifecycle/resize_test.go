package lifecycle

import (
	"context"
	"fmt"
	"testing"

	"github.com/Iron-Ham/codedock/internal/window"
)

func TestResize_FillsContainer(t *testing.T) {
	h := newHarness(t)
	if err := h.ctrl.Embed(context.Background(), h.container); err != nil {
		t.Fatal(err)
	}

	sizes := []struct{ w, h int }{{1024, 700}, {1, 1}, {3840, 2100}}
	for _, sz := range sizes {
		h.reg.Resize(h.container, sz.w, sz.h)
		if err := h.resize.Sync(); err != nil {
			t.Fatalf("Sync() error = %v", err)
		}
		want := window.Rect{Width: sz.w, Height: sz.h}
		if got := h.window(t).Bounds; got != want {
			t.Errorf("after resize to %dx%d Bounds = %+v, want %+v", sz.w, sz.h, got, want)
		}
	}
}

func TestResize_DegenerateIsNoop(t *testing.T) {
	h := newHarness(t)
	if err := h.ctrl.Embed(context.Background(), h.container); err != nil {
		t.Fatal(err)
	}
	before := h.window(t).Bounds

	for _, sz := range []struct{ w, h int }{{0, 0}, {0, 500}, {500, 0}, {-5, 200}} {
		h.reg.Resize(h.container, sz.w, sz.h)
		if err := h.resize.Sync(); err != nil {
			t.Fatalf("Sync() error = %v", err)
		}
		if got := h.window(t).Bounds; got != before {
			t.Errorf("%dx%d changed Bounds to %+v", sz.w, sz.h, got)
		}
	}
}

func TestResize_OnlyWhenEmbedded(t *testing.T) {
	h := newHarness(t)

	if err := h.resize.Sync(); err != nil {
		t.Errorf("Sync() without session = %v, want nil", err)
	}

	if err := h.ctrl.Embed(context.Background(), h.container); err != nil {
		t.Fatal(err)
	}
	_ = h.ctrl.Detach()
	calls := h.reg.Calls("SetBounds")

	h.reg.Resize(h.container, 300, 300)
	if err := h.resize.Sync(); err != nil {
		t.Errorf("Sync() while hidden = %v, want nil", err)
	}
	if h.reg.Calls("SetBounds") != calls {
		t.Error("hidden window must not be resized")
	}

	h.ctrl.Shutdown()
	if err := h.resize.Sync(); err != nil {
		t.Errorf("Sync() after shutdown = %v, want nil", err)
	}
}

func TestResize_StaleWindow(t *testing.T) {
	h := newHarness(t)
	if err := h.ctrl.Embed(context.Background(), h.container); err != nil {
		t.Fatal(err)
	}
	s, _ := h.registry.Snapshot()
	h.reg.Destroy(s.Window)

	if err := h.resize.Sync(); err != nil {
		t.Errorf("Sync() with dead window = %v, want nil", err)
	}
}

func TestResize_BackendError(t *testing.T) {
	h := newHarness(t)
	if err := h.ctrl.Embed(context.Background(), h.container); err != nil {
		t.Fatal(err)
	}
	h.reg.Fail("SetBounds", fmt.Errorf("window busy"))

	if err := h.resize.Sync(); err == nil {
		t.Error("Sync() should surface non-stale backend errors")
	}
}
