package embedder

import (
	"fmt"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/window"
)

type visit struct {
	handle window.Handle
	depth  int
}

// StripDecorations clears the decoration bits of root and every descendant
// reachable within the configured limits, depth first, refreshing the frame
// of each window it restyles. The root also gets
// the child bit and loses the popup bit; descendants keep their remaining
// bits. Windows that are already undecorated are not restyled, so repeated
// calls are no-ops.
//
// Descendants that vanish during the walk are skipped. Only a failure on
// the root is returned.
func (e *Embedder) StripDecorations(root window.Handle) error {
	stack := []visit{{handle: root}}
	seen := make(map[window.Handle]bool)

	for len(stack) > 0 && len(seen) < e.limits.MaxWindows {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[v.handle] {
			continue
		}
		seen[v.handle] = true

		if err := e.restyle(v.handle, v.handle == root); err != nil {
			if v.handle == root {
				return err
			}
			e.logger.Debug("skipping child during restyle", "child", v.handle.String(), "error", err)
			continue
		}

		if v.depth >= e.limits.MaxDepth {
			continue
		}
		children, err := e.backend.Children(v.handle)
		if err != nil {
			if v.handle == root && errors.Is(err, errors.ErrStaleHandle) {
				return err
			}
			e.logger.Debug("cannot list children", "window", v.handle.String(), "error", err)
			continue
		}
		// Push in reverse so the first child is visited first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, visit{handle: children[i], depth: v.depth + 1})
		}
	}

	pending := 0
	for _, v := range stack {
		if !seen[v.handle] {
			pending++
		}
	}
	if pending > 0 {
		e.logger.Debug("decoration walk truncated", "visited", len(seen), "pending", pending)
	}
	return nil
}

// restyle applies the decoration policy to one window and refreshes its
// frame, since style bits alone leave the old decorations drawn. The top
// window is refreshed even when its style is unchanged because it was just
// reparented.
func (e *Embedder) restyle(h window.Handle, top bool) error {
	old, err := e.backend.Style(h)
	if err != nil {
		return err
	}

	next := old &^ window.Decorations
	if top {
		next = (next | window.StyleChild) &^ window.StylePopup
	}
	if next == old {
		if top {
			return e.backend.RefreshFrame(h)
		}
		return nil
	}

	if err := e.backend.SetStyle(h, next); err != nil {
		return err
	}
	if err := e.backend.RefreshFrame(h); err != nil {
		return err
	}
	e.logger.Debug("stripped decorations",
		"window", h.String(),
		"old_style", fmt.Sprintf("%#08x", uint32(old)),
		"new_style", fmt.Sprintf("%#08x", uint32(next)))
	return nil
}
