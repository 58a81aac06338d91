package uithread

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLoop_DoReturnsError(t *testing.T) {
	l := Start()
	defer l.Close()

	want := errors.New("boom")
	if err := l.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Do() = %v, want %v", err, want)
	}
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("Do() = %v, want nil", err)
	}
}

func TestLoop_SerializesCalls(t *testing.T) {
	l := Start()
	defer l.Close()

	var active, maxActive, total atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func() error {
				n := active.Add(1)
				if n > maxActive.Load() {
					maxActive.Store(n)
				}
				total.Add(1)
				active.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxActive.Load() != 1 {
		t.Errorf("observed %d concurrent calls, want 1", maxActive.Load())
	}
	if total.Load() != 50 {
		t.Errorf("ran %d calls, want 50", total.Load())
	}
}

func TestLoop_RecoversPanic(t *testing.T) {
	l := Start()
	defer l.Close()

	err := l.Do(context.Background(), func() error { panic("bad handle") })
	if err == nil {
		t.Fatal("Do() should report the panic as an error")
	}

	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("loop should keep serving after a panic, got %v", err)
	}
}

func TestLoop_Closed(t *testing.T) {
	l := Start()
	l.Close()
	l.Close()

	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Do() after Close = %v, want ErrClosed", err)
	}
}

func TestLoop_CanceledContext(t *testing.T) {
	l := Start()
	defer l.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.Do(context.Background(), func() error {
			close(started)
			<-block
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Do(ctx, func() error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("Do() with canceled ctx = %v, want context.Canceled", err)
	}
	close(block)
}
