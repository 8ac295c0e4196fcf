package loop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer written by the session goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

// runSession starts a session on a pipe and returns its input side and result.
func runSession(t *testing.T, ctx context.Context, opts SessionOptions) (*io.PipeWriter, *syncBuffer, <-chan error) {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	out := &syncBuffer{}
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = fixedSize(120, 40)
	}
	s := NewSession(bufio.NewReader(pr), out, opts)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	return pw, out, errCh
}

func wait(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
		return nil
	}
}

func TestSessionQuitsOnQ(t *testing.T) {
	pw, out, errCh := runSession(t, context.Background(), SessionOptions{})

	time.Sleep(50 * time.Millisecond)
	if _, err := pw.Write([]byte("q")); err != nil {
		t.Fatal(err)
	}

	if err := wait(t, errCh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "\033[?1049h\033[?25l") {
		t.Errorf("expected alternate screen setup, got %q", got[:min(len(got), 20)])
	}
	if !strings.HasSuffix(got, "\033[?25h\033[0m\033[?1049l") {
		t.Error("expected terminal restored on exit")
	}
	if !strings.Contains(got, "SPACE DEFENDER") {
		t.Error("expected the menu to be drawn")
	}
}

func TestSessionEndsWithInput(t *testing.T) {
	pw, _, errCh := runSession(t, context.Background(), SessionOptions{})
	pw.Close()

	if err := wait(t, errCh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, _, errCh := runSession(t, ctx, SessionOptions{})

	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := wait(t, errCh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionIdleTimeout(t *testing.T) {
	_, out, errCh := runSession(t, context.Background(), SessionOptions{
		IdleTimeout: 200 * time.Millisecond,
	})

	if err := wait(t, errCh); !errors.Is(err, ErrIdle) {
		t.Fatalf("expected ErrIdle, got %v", err)
	}
	if !strings.Contains(out.String(), "Idle: disconnecting in") {
		t.Error("expected idle warning before disconnect")
	}
}

func TestSessionDrawsBorderOnWideTerminal(t *testing.T) {
	pw, out, errCh := runSession(t, context.Background(), SessionOptions{
		TermSizeFunc: fixedSize(200, 50),
	})

	time.Sleep(50 * time.Millisecond)
	pw.Write([]byte("q"))
	if err := wait(t, errCh); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "│") {
		t.Error("expected side borders around the centred canvas")
	}
}
