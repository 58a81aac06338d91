// Package uithread runs window-system calls on a single, OS-thread-locked
// goroutine.
//
// Window handles and window-tree queries are bound to the thread that owns
// the relevant windowing context, so every backend call is funneled through
// one Loop. Callers block until their function has run on the loop thread.
// Waiting (polling delays, sleeps) must happen outside Do so the loop stays
// available to other callers.
package uithread

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("ui thread loop closed")

type call struct {
	fn   func() error
	done chan error
}

// Loop serializes functions onto one locked OS thread.
type Loop struct {
	calls     chan call
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// Start launches the loop goroutine and locks it to its OS thread.
func Start() *Loop {
	l := &Loop{
		calls:   make(chan call),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	ready := make(chan struct{})
	go l.run(ready)
	<-ready
	return l
}

func (l *Loop) run(ready chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.stopped)

	close(ready)
	for {
		select {
		case c := <-l.calls:
			c.done <- invoke(c.fn)
		case <-l.quit:
			return
		}
	}
}

// invoke runs fn and converts a panic into an error so a misbehaving call
// cannot take the loop down.
func invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ui thread call panicked: %v", r)
		}
	}()
	return fn()
}

// Do runs fn on the loop thread and returns its error. It returns ctx.Err()
// if ctx ends before fn is scheduled, and ErrClosed once the loop is closed.
// fn must not call Do on the same loop.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	c := call{fn: fn, done: make(chan error, 1)}

	select {
	case l.calls <- c:
	case <-l.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the call always completes; the loop only checks quit
	// between calls.
	return <-c.done
}

// Close stops the loop after any in-flight call finishes.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.quit)
	})
	<-l.stopped
}
